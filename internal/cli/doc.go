// Package cli implements the gistpen admin REPL: a line-oriented shell over
// the entity manager that prints entities as indented JSON.
package cli
