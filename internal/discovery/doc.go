// Package discovery enumerates source files lazily and in a reproducible
// order: a lexical directory walk, or the literal order of a newline
// delimited path list. Collision suffixes depend on this order.
package discovery
