// Package lift holds the decoded-function representation handed back
// by the decode engine and the module container the decompile and
// save commands operate on.
package lift

import (
	"fmt"
	"io"

	"github.com/binspect/autodis/models"
)

// SynthName names a lifted function that has no symbol.
func SynthName(addr uint64) string {
	return fmt.Sprintf("func_%x", addr)
}

// Block is a straight-line run of instructions with a single entry.
type Block struct {
	Addr uint64
	Ins  []models.Ins
}

// Function is one decoded function body: its blocks in address order.
type Function struct {
	Name   string
	Addr   uint64
	Blocks []*Block
}

// blockEnders are mnemonics that terminate a straight-line block
// under a linear sweep (returns and unconditional branches across the
// supported ISAs).
var blockEnders = map[string]bool{
	"ret": true, "retq": true, "retn": true,
	"jmp": true, "ljmp": true,
	"b": true, "br": true, "bx": true,
	"j": true, "jr": true,
	"blr": true, "bctr": true,
}

// NewFunction partitions a linear instruction sequence into blocks,
// splitting after returns and unconditional branches. The sequence is
// already in address order; the partition preserves it.
func NewFunction(name string, addr uint64, ins []models.Ins) *Function {
	f := &Function{Name: name, Addr: addr}
	if len(ins) == 0 {
		return f
	}
	cur := &Block{Addr: ins[0].Addr()}
	for _, in := range ins {
		cur.Ins = append(cur.Ins, in)
		if blockEnders[in.Mnemonic()] {
			f.Blocks = append(f.Blocks, cur)
			cur = &Block{Addr: in.Addr() + uint64(len(in.Bytes()))}
		}
	}
	if len(cur.Ins) > 0 {
		f.Blocks = append(f.Blocks, cur)
	}
	return f
}

// Empty reports whether the function decoded to no instructions.
func (f *Function) Empty() bool {
	for _, b := range f.Blocks {
		if len(b.Ins) > 0 {
			return false
		}
	}
	return true
}

// Instructions flattens the blocks back into address order.
func (f *Function) Instructions() []models.Ins {
	var ret []models.Ins
	for _, b := range f.Blocks {
		ret = append(ret, b.Ins...)
	}
	return ret
}

// WriteTo serializes the function as a textual listing.
func (f *Function) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintf(w, "define @%s at 0x%x {\n", f.Name, f.Addr)
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, b := range f.Blocks {
		n, err = fmt.Fprintf(w, "block_%x:\n", b.Addr)
		total += int64(n)
		if err != nil {
			return total, err
		}
		for _, in := range b.Ins {
			n, err = fmt.Fprintf(w, "  0x%x %s %s\n", in.Addr(), in.Mnemonic(), in.OpStr())
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	n, err = fmt.Fprintln(w, "}")
	total += int64(n)
	return total, err
}

// Module accumulates lifted functions across decompile commands so
// save can serialize everything decompiled so far.
type Module struct {
	Name  string
	funcs []*Function
}

func NewModule(name string) *Module {
	return &Module{Name: name}
}

// Add inserts f, replacing any previously lifted function at the
// same address.
func (m *Module) Add(f *Function) {
	for i, old := range m.funcs {
		if old.Addr == f.Addr {
			m.funcs[i] = f
			return
		}
	}
	m.funcs = append(m.funcs, f)
}

func (m *Module) Func(addr uint64) *Function {
	for _, f := range m.funcs {
		if f.Addr == addr {
			return f
		}
	}
	return nil
}

// WriteTo serializes the whole module verbatim, the form the save
// command writes to disk.
func (m *Module) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintf(w, "; module %s\n", m.Name)
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, f := range m.funcs {
		n, err := fmt.Fprintln(w)
		total += int64(n)
		if err != nil {
			return total, err
		}
		fn, err := f.WriteTo(w)
		total += fn
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
