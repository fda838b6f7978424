package models

import "io"

// Config carries the resolved startup options. It is built once by
// the command-line front end and threaded through the session; the
// batch and interactive modes read the same fields.
type Config struct {
	Triple string   // explicit target triple, empty = auto-detect
	Arch   string   // overrides just the triple's arch component
	Attrs  []string // target attributes, e.g. "thumb", "be"
	Input  string   // positional input path, "-" = stdin

	Interactive bool
	Verbose     bool

	Output io.Writer // diagnostics stream, defaults to stderr
}
