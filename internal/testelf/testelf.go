// Package testelf assembles minimal ELF images in memory so loader
// and driver tests do not depend on checked-in binaries.
package testelf

import (
	"bytes"
	"encoding/binary"
)

const (
	TypeProgbits = 1
	TypeSymtab   = 2
	TypeStrtab   = 3
	TypeNobits   = 8

	FlagWrite = 1
	FlagAlloc = 2
	FlagExec  = 4
)

// Symbol is one .symtab entry. Info is the raw st_info byte:
// 0x12 = global function, 0x11 = global object.
type Symbol struct {
	Name string
	Addr uint64
	Size uint64
	Info byte
}

// Section is one user section; Size only matters for NOBITS.
type Section struct {
	Name  string
	Addr  uint64
	Size  uint64
	Data  []byte
	Typ   uint32
	Flags uint64
}

// Text is shorthand for an executable .text section.
func Text(addr uint64, data []byte) Section {
	return Section{Name: ".text", Addr: addr, Data: data, Typ: TypeProgbits, Flags: FlagAlloc | FlagExec}
}

// Func is shorthand for a global function symbol.
func Func(name string, addr, size uint64) Symbol {
	return Symbol{Name: name, Addr: addr, Size: size, Info: 0x12}
}

type strtab struct {
	buf bytes.Buffer
}

func newStrtab() *strtab {
	s := &strtab{}
	s.buf.WriteByte(0)
	return s
}

func (s *strtab) add(name string) uint32 {
	if name == "" {
		return 0
	}
	off := uint32(s.buf.Len())
	s.buf.WriteString(name)
	s.buf.WriteByte(0)
	return off
}

type shdr struct {
	name, typ              uint32
	flags, addr, off, size uint64
	link, info             uint32
	addralign, entsize     uint64
}

// Build64LE assembles an ELF64 little-endian EXEC image for machine
// EM_X86_64 with the given sections and symbols.
func Build64LE(sections []Section, syms []Symbol) []byte {
	le := binary.LittleEndian
	shstr := newStrtab()
	str := newStrtab()

	// symtab: null entry first, every test symbol bound to section 1
	var symtab bytes.Buffer
	symtab.Write(make([]byte, 24))
	for _, sym := range syms {
		var ent [24]byte
		le.PutUint32(ent[0:], str.add(sym.Name))
		ent[4] = sym.Info
		le.PutUint16(ent[6:], 1)
		le.PutUint64(ent[8:], sym.Addr)
		le.PutUint64(ent[16:], sym.Size)
		symtab.Write(ent[:])
	}

	// layout: ehdr | section datas | symtab | strtab | shstrtab | shdrs
	var body bytes.Buffer
	off := uint64(64)
	hdrs := []shdr{{}} // index 0: SHT_NULL

	for _, sec := range sections {
		size := uint64(len(sec.Data))
		dataOff := off
		if sec.Typ == TypeNobits {
			size = sec.Size
		} else {
			body.Write(sec.Data)
			off += uint64(len(sec.Data))
		}
		hdrs = append(hdrs, shdr{
			name: shstr.add(sec.Name), typ: sec.Typ, flags: sec.Flags,
			addr: sec.Addr, off: dataOff, size: size, addralign: 1,
		})
	}

	strtabIdx := uint32(len(hdrs) + 1)
	hdrs = append(hdrs, shdr{
		name: shstr.add(".symtab"), typ: TypeSymtab,
		off: off, size: uint64(symtab.Len()),
		link: strtabIdx, info: 1, addralign: 1, entsize: 24,
	})
	body.Write(symtab.Bytes())
	off += uint64(symtab.Len())

	hdrs = append(hdrs, shdr{
		name: shstr.add(".strtab"), typ: TypeStrtab,
		off: off, size: uint64(str.buf.Len()), addralign: 1,
	})
	body.Write(str.buf.Bytes())
	off += uint64(str.buf.Len())

	shstrName := shstr.add(".shstrtab")
	hdrs = append(hdrs, shdr{
		name: shstrName, typ: TypeStrtab,
		off: off, size: uint64(shstr.buf.Len()), addralign: 1,
	})
	body.Write(shstr.buf.Bytes())
	off += uint64(shstr.buf.Len())

	shoff := off

	var out bytes.Buffer
	ehdr := make([]byte, 64)
	copy(ehdr, []byte{0x7f, 'E', 'L', 'F', 2, 1, 1})
	le.PutUint16(ehdr[16:], 2)  // ET_EXEC
	le.PutUint16(ehdr[18:], 62) // EM_X86_64
	le.PutUint32(ehdr[20:], 1)
	le.PutUint64(ehdr[40:], shoff)
	le.PutUint16(ehdr[52:], 64)
	le.PutUint16(ehdr[58:], 64)
	le.PutUint16(ehdr[60:], uint16(len(hdrs)))
	le.PutUint16(ehdr[62:], uint16(len(hdrs)-1)) // shstrtab index
	out.Write(ehdr)
	out.Write(body.Bytes())

	for _, h := range hdrs {
		var ent [64]byte
		le.PutUint32(ent[0:], h.name)
		le.PutUint32(ent[4:], h.typ)
		le.PutUint64(ent[8:], h.flags)
		le.PutUint64(ent[16:], h.addr)
		le.PutUint64(ent[24:], h.off)
		le.PutUint64(ent[32:], h.size)
		le.PutUint32(ent[40:], h.link)
		le.PutUint32(ent[44:], h.info)
		le.PutUint64(ent[48:], h.addralign)
		le.PutUint64(ent[56:], h.entsize)
		out.Write(ent[:])
	}
	return out.Bytes()
}

// Header32BE builds a header-only ELF32 big-endian image (no section
// table) for machine EM_PPC. debug/elf accepts it and reports empty
// section and symbol tables.
func Header32BE() []byte {
	be := binary.BigEndian
	ehdr := make([]byte, 52)
	copy(ehdr, []byte{0x7f, 'E', 'L', 'F', 1, 2, 1})
	be.PutUint16(ehdr[16:], 2)  // ET_EXEC
	be.PutUint16(ehdr[18:], 20) // EM_PPC
	be.PutUint32(ehdr[20:], 1)
	be.PutUint16(ehdr[40:], 52)
	return ehdr
}
