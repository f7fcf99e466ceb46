// Package archive streams placed files into a single archive under their
// relative target paths. The zip implementation uses
// github.com/klauspost/compress/zip with Deflate compression.
package archive
