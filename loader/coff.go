package loader

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/binspect/autodis/models"
)

// COFF support is limited to format detection and a best-effort
// section list. Symbol enumeration is a known gap: Symbols always
// reports an empty table, never an error.

type coffFileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

type coffSectionHeader struct {
	Name                 [8]byte
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLinenumbers uint32
	NumberOfRelocations  uint16
	NumberOfLinenumbers  uint16
	Characteristics      uint32
}

const (
	coffFileHeaderSize    = 20
	coffSectionHeaderSize = 40

	coffScnCode       = 0x00000020
	coffScnInitData   = 0x00000040
	coffScnUninitData = 0x00000080
)

var peMagic = []byte{0x4d, 0x5a} // "MZ"

var coffMachines = map[uint16]string{
	0x014c: "x86",
	0x01c0: "arm",
	0x8664: "x86_64",
	0xaa64: "arm64",
}

// MatchCoff recognizes PE images by the MZ stub and bare COFF objects
// by a known machine magic in the first two bytes.
func MatchCoff(r io.ReaderAt) bool {
	magic := getMagic(r)
	if bytes.Equal(magic[:2], peMagic) {
		return true
	}
	_, ok := coffMachines[binary.LittleEndian.Uint16(magic[:2])]
	return ok
}

type CoffLoader struct {
	LoaderHeader
	r   io.ReaderAt
	hdr coffFileHeader
	off int64 // file offset of the COFF file header
}

func NewCoffLoader(r io.ReaderAt) (models.Loader, error) {
	var off int64
	if bytes.Equal(getMagic(r)[:2], peMagic) {
		// PE: e_lfanew at 0x3c points at the "PE\0\0" signature,
		// followed by the COFF file header.
		var lfanew [4]byte
		if _, err := r.ReadAt(lfanew[:], 0x3c); err != nil {
			return nil, errors.Wrap(err, "reading pe header offset")
		}
		off = int64(binary.LittleEndian.Uint32(lfanew[:])) + 4
	}
	var hdr coffFileHeader
	sr := io.NewSectionReader(r, off, coffFileHeaderSize)
	if err := struc.UnpackWithOrder(sr, &hdr, binary.LittleEndian); err != nil {
		return nil, errors.Wrap(err, "coff header unpack failed")
	}
	arch := coffMachines[hdr.Machine]
	bits := 32
	switch arch {
	case "":
		arch = "unknown"
	case "x86_64", "arm64":
		bits = 64
	}
	return &CoffLoader{
		LoaderHeader: LoaderHeader{
			arch:      arch,
			bits:      bits,
			byteOrder: binary.LittleEndian,
			os:        "windows",
			format:    models.FormatCOFF,
		},
		r:   r,
		hdr: hdr,
		off: off,
	}, nil
}

// Symbols is unimplemented for COFF.
func (c *CoffLoader) Symbols() ([]models.Symbol, error) {
	return nil, nil
}

func (c *CoffLoader) Sections() ([]models.Section, error) {
	secOff := c.off + coffFileHeaderSize + int64(c.hdr.SizeOfOptionalHeader)
	ret := make([]models.Section, 0, c.hdr.NumberOfSections)
	for i := 0; i < int(c.hdr.NumberOfSections); i++ {
		var sh coffSectionHeader
		sr := io.NewSectionReader(c.r, secOff+int64(i)*coffSectionHeaderSize, coffSectionHeaderSize)
		if err := struc.UnpackWithOrder(sr, &sh, binary.LittleEndian); err != nil {
			// truncated table: keep what parsed
			return ret, nil
		}
		var flags models.SectionFlags
		if sh.Characteristics&coffScnCode != 0 {
			flags |= models.SecText
		}
		if sh.Characteristics&coffScnInitData != 0 {
			flags |= models.SecData
		}
		if sh.Characteristics&coffScnUninitData != 0 {
			flags |= models.SecBSS
		}
		size := uint64(sh.VirtualSize)
		if size == 0 {
			size = uint64(sh.SizeOfRawData)
		}
		var data []byte
		if flags&models.SecBSS == 0 && sh.SizeOfRawData > 0 {
			data = make([]byte, sh.SizeOfRawData)
			if _, err := c.r.ReadAt(data, int64(sh.PointerToRawData)); err != nil {
				data = nil
			}
		}
		ret = append(ret, models.Section{
			Name:  string(bytes.TrimRight(sh.Name[:], "\x00")),
			Addr:  uint64(sh.VirtualAddress),
			Size:  size,
			Flags: flags,
			Data:  data,
		})
	}
	return ret, nil
}
