package models

import (
	"strings"

	"github.com/pkg/errors"
)

type SectionFlags int

// Section flags are non-exclusive: a section can report more than one.
const (
	SecText SectionFlags = 1 << iota
	SecData
	SecBSS
)

// ErrBSS is returned when section contents are requested for a BSS
// section. BSS occupies address space but has no backing bytes, and
// callers must special-case it instead of reading zeros.
var ErrBSS = errors.New("bss section has no contents")

type Section struct {
	Name  string
	Addr  uint64
	Size  uint64
	Flags SectionFlags
	Data  []byte // nil for BSS / virtual sections
}

// Contains reports whether addr falls inside [Addr, Addr+Size).
func (s *Section) Contains(addr uint64) bool {
	return s.Addr <= addr && addr < s.Addr+s.Size
}

// Contents returns the backing bytes starting at addr.
func (s *Section) Contents(addr uint64) ([]byte, error) {
	if s.Flags&SecBSS != 0 {
		return nil, ErrBSS
	}
	if !s.Contains(addr) {
		return nil, errors.Errorf("address 0x%x outside section %s", addr, s.Name)
	}
	off := addr - s.Addr
	if off >= uint64(len(s.Data)) {
		return nil, nil
	}
	return s.Data[off:], nil
}

func (s *Section) TypeString() string {
	var parts []string
	if s.Flags&SecText != 0 {
		parts = append(parts, "TEXT")
	}
	if s.Flags&SecData != 0 {
		parts = append(parts, "DATA")
	}
	if s.Flags&SecBSS != 0 {
		parts = append(parts, "BSS")
	}
	return strings.Join(parts, " ")
}
