package loader

import (
	"encoding/binary"

	"github.com/binspect/autodis/models"
)

// LoaderHeader holds the fields common to every format loader.
type LoaderHeader struct {
	arch      string
	bits      int
	byteOrder binary.ByteOrder
	os        string
	entry     uint64
	format    models.Format
}

func (l *LoaderHeader) Arch() string {
	return l.arch
}

func (l *LoaderHeader) Bits() int {
	return l.bits
}

func (l *LoaderHeader) ByteOrder() binary.ByteOrder {
	if l.byteOrder == nil {
		return binary.LittleEndian
	}
	return l.byteOrder
}

func (l *LoaderHeader) OS() string {
	return l.os
}

func (l *LoaderHeader) Entry() uint64 {
	return l.entry
}

func (l *LoaderHeader) Format() models.Format {
	return l.format
}
