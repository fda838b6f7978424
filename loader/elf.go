package loader

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/binspect/autodis/logflags"
	"github.com/binspect/autodis/models"
)

var machineMap = map[elf.Machine]string{
	elf.EM_386:     "x86",
	elf.EM_X86_64:  "x86_64",
	elf.EM_ARM:     "arm",
	elf.EM_AARCH64: "arm64",
	elf.EM_MIPS:    "mips",
	elf.EM_PPC:     "ppc",
	elf.EM_PPC64:   "ppc64",
	elf.EM_SPARC:   "sparc",
	elf.EM_SPARCV9: "sparc",
}

type ElfLoader struct {
	LoaderHeader
	file *elf.File
}

var elfMagic = []byte{0x7f, 0x45, 0x4c, 0x46}

func MatchElf(r io.ReaderAt) bool {
	return bytes.Equal(getMagic(r), elfMagic)
}

func NewElfLoader(r io.ReaderAt) (models.Loader, error) {
	file, err := elf.NewFile(r)
	if err != nil {
		return nil, errors.Wrap(err, "elf parsing failed")
	}
	var bits int
	switch file.Class {
	case elf.ELFCLASS32:
		bits = 32
	case elf.ELFCLASS64:
		bits = 64
	default:
		return nil, errors.New("unknown ELF class")
	}
	var byteOrder binary.ByteOrder = binary.LittleEndian
	if file.Data == elf.ELFDATA2MSB {
		byteOrder = binary.BigEndian
	}
	var format models.Format
	switch {
	case bits == 32 && file.Data == elf.ELFDATA2MSB:
		format = models.FormatELF32BE
	case bits == 32:
		format = models.FormatELF32LE
	case bits == 64 && file.Data == elf.ELFDATA2MSB:
		format = models.FormatELF64BE
	default:
		format = models.FormatELF64LE
	}
	// An unlisted machine still loads; it just resolves no arch, so
	// no decode engine gets constructed for it.
	machineName := machineMap[file.Machine]
	if machineName == "" {
		machineName = "unknown"
	}
	return &ElfLoader{
		LoaderHeader: LoaderHeader{
			arch:      machineName,
			bits:      bits,
			byteOrder: byteOrder,
			os:        "linux",
			entry:     file.Entry,
			format:    format,
		},
		file: file,
	}, nil
}

func symKind(info byte) models.SymKind {
	switch elf.ST_TYPE(info) {
	case elf.STT_FUNC:
		return models.SymFunc
	case elf.STT_OBJECT:
		return models.SymData
	}
	return models.SymOther
}

// Symbols walks .symtab followed by the dynamic symbol table. The
// four ELF width/endianness variants all land here: debug/elf decodes
// the on-disk width and byte order behind one symbol type.
func (e *ElfLoader) Symbols() ([]models.Symbol, error) {
	syms, err := e.file.Symbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, errors.Wrap(err, "reading elf symbols")
	}
	ret := make([]models.Symbol, 0, len(syms))
	for _, s := range syms {
		ret = append(ret, models.Symbol{
			Name: s.Name,
			Addr: s.Value,
			Size: s.Size,
			Kind: symKind(s.Info),
		})
	}
	dyn, _ := e.file.DynamicSymbols()
	for _, s := range dyn {
		ret = append(ret, models.Symbol{
			Name: s.Name,
			Addr: s.Value,
			Size: s.Size,
			Kind: symKind(s.Info),
		})
	}
	return ret, nil
}

func (e *ElfLoader) Sections() ([]models.Section, error) {
	ret := make([]models.Section, 0, len(e.file.Sections))
	for _, sec := range e.file.Sections {
		if sec.Type == elf.SHT_NULL {
			continue
		}
		var flags models.SectionFlags
		alloc := sec.Flags&elf.SHF_ALLOC != 0
		bss := sec.Type == elf.SHT_NOBITS
		if alloc && sec.Flags&elf.SHF_EXECINSTR != 0 {
			flags |= models.SecText
		}
		if alloc && bss {
			flags |= models.SecBSS
		} else if alloc && flags&models.SecText == 0 {
			flags |= models.SecData
		}
		var data []byte
		if !bss {
			var err error
			if data, err = sec.Data(); err != nil {
				// unreadable bytes degrade to a data-less entry
				logflags.LoaderLogger().WithError(err).Warnf("section %s unreadable", sec.Name)
				data = nil
			}
		}
		ret = append(ret, models.Section{
			Name:  sec.Name,
			Addr:  sec.Addr,
			Size:  sec.Size,
			Flags: flags,
			Data:  data,
		})
	}
	return ret, nil
}
