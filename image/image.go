// Package image provides the unified view of one loaded binary: raw
// bytes, detected format, resolved triple, and the section and symbol
// tables indexed once at load time.
package image

import (
	"bytes"

	"github.com/binspect/autodis/loader"
	"github.com/binspect/autodis/logflags"
	"github.com/binspect/autodis/models"
)

type Image struct {
	Path   string
	Format models.Format
	Triple models.Triple
	Loader models.Loader

	raw      []byte
	sections []models.Section
	symbols  []models.Symbol
}

// Load reads path (stdin for "-"), dispatches the format once, and
// indexes the section and symbol tables. Everything after this point
// is a query against the cached tables; no per-query format dispatch.
func Load(path string) (*Image, error) {
	p, err := loader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(path, p)
}

// New builds an Image from raw bytes already in memory.
func New(path string, p []byte) (*Image, error) {
	l, err := loader.Load(bytes.NewReader(p))
	if err != nil {
		return nil, err
	}
	// corrupt tables degrade to empty ones; the raw bytes stay usable
	sections, err := l.Sections()
	if err != nil {
		logflags.LoaderLogger().WithError(err).Warn("section table unreadable")
		sections = nil
	}
	symbols, err := l.Symbols()
	if err != nil {
		logflags.LoaderLogger().WithError(err).Warn("symbol table unreadable")
		symbols = nil
	}
	return &Image{
		Path:     path,
		Format:   l.Format(),
		Triple:   models.Triple{Arch: models.NormalizeArch(l.Arch()), Vendor: "unknown", OS: l.OS()},
		Loader:   l,
		raw:      p,
		sections: sections,
		symbols:  symbols,
	}, nil
}

// Bytes exposes the raw input, which stays accessible even for
// images of unknown format.
func (i *Image) Bytes() []byte {
	return i.raw
}

// Sections returns the section table in on-disk order. Display
// indices are 1-based.
func (i *Image) Sections() []models.Section {
	return i.sections
}

// SectionByAddr returns the first section whose range contains addr.
func (i *Image) SectionByAddr(addr uint64) (*models.Section, bool) {
	for n := range i.sections {
		if i.sections[n].Contains(addr) {
			return &i.sections[n], true
		}
	}
	return nil, false
}

func (i *Image) SectionByName(name string) (*models.Section, bool) {
	for n := range i.sections {
		if i.sections[n].Name == name {
			return &i.sections[n], true
		}
	}
	return nil, false
}

// TextSection returns the code section: ".text" when present,
// otherwise the first TEXT-flagged section.
func (i *Image) TextSection() (*models.Section, bool) {
	if sec, ok := i.SectionByName(".text"); ok {
		return sec, true
	}
	for n := range i.sections {
		if i.sections[n].Flags&models.SecText != 0 {
			return &i.sections[n], true
		}
	}
	return nil, false
}
