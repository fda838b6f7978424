package loader

import (
	"encoding/binary"
	"io"

	"github.com/binspect/autodis/models"
)

// RawLoader wraps bytes no structured loader could handle, whether
// the magic matched nothing or the parse failed. The image is still
// loadable so later commands have something to operate against, but
// it has no sections and no symbols.
type RawLoader struct {
	LoaderHeader
}

func NewRawLoader(r io.ReaderAt) (models.Loader, error) {
	return &RawLoader{LoaderHeader{
		arch:      "unknown",
		os:        "unknown",
		byteOrder: binary.LittleEndian,
		format:    models.FormatUnknown,
	}}, nil
}

func (l *RawLoader) Symbols() ([]models.Symbol, error) {
	return nil, nil
}

func (l *RawLoader) Sections() ([]models.Section, error) {
	return nil, nil
}
