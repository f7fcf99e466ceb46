// Package naming resolves within-run collisions between rendered target paths.
//
// Index is the used-path index of a single sorting run: every relative path
// handed out is recorded and never released, so two source files can never
// receive the same target. When a rendered path is already taken the index
// derives "<stem>_<n><ext>" variants, n counting up from 2, in the order
// files arrive. Directory prefixes are claimed too, so a file cannot land on
// a directory this run created and a directory chain that meets a claimed
// file is numbered at that segment. On-disk collisions with files from earlier runs are not this
// package's concern; the placement engine handles those.
package naming
