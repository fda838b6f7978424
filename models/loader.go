package models

import "encoding/binary"

// Loader is the per-format capability interface. The format is
// decided once at load time; every query after that goes through the
// same concrete loader. Loaders for formats without symbol or section
// support (COFF, raw bytes) return empty collections, not errors.
type Loader interface {
	Arch() string
	Bits() int
	ByteOrder() binary.ByteOrder
	OS() string
	Entry() uint64
	Format() Format
	Symbols() ([]Symbol, error)
	Sections() ([]Section, error)
}
