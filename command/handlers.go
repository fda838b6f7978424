package command

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/binspect/autodis/image"
	"github.com/binspect/autodis/logflags"
	"github.com/binspect/autodis/models"
	"github.com/binspect/autodis/session"
)

// resolveAddr resolves an address-or-name token: numeric parse first
// (base 0: 0x.., 0.., decimal), then an exact symbol-name lookup.
func resolveAddr(img *image.Image, tok string) (uint64, error) {
	if addr, err := strconv.ParseUint(tok, 0, 64); err == nil {
		return addr, nil
	}
	if addr, ok := img.AddressOf(tok); ok {
		return addr, nil
	}
	return 0, errors.Errorf("error retrieving address based on function name '%s'", tok)
}

// Load runs the load command with path as a single token, so paths
// containing whitespace survive (Call would re-tokenize them).
func (c *Commands) Load(path string) error {
	return load(c.env, []string{"load", path})
}

func load(e *Env, args []string) error {
	if len(args) != 2 {
		return usage(e, "load <path>")
	}
	s, err := session.Load(e.Config, args[1])
	if err != nil {
		// the previous session, if any, stays untouched
		logflags.CommandLogger().Errorf("could not open the file '%s': %v", args[1], err)
		return nil
	}
	old := e.Session
	e.Session = s
	if old != nil {
		old.Close()
	}
	return nil
}

func sections(e *Env, args []string) error {
	if !requireSession(e) {
		return nil
	}
	fmt.Fprint(e.Out, "Sections:\n")
	fmt.Fprint(e.Out, "Idx Name          Size      Address          Type\n")
	for i, sec := range e.Session.Image.Sections() {
		fmt.Fprintf(e.Out, "%3d %-13s %08x %016x %s\n",
			i+1, sec.Name, sec.Size, sec.Addr, sec.TypeString())
	}
	return nil
}

func symbols(e *Env, args []string) error {
	if len(args) != 2 {
		return usage(e, "symbols <section name or address>")
	}
	if !requireSession(e) {
		return nil
	}
	img := e.Session.Image
	var sec *models.Section
	var ok bool
	if addr, err := strconv.ParseUint(args[1], 0, 64); err == nil && addr != 0 {
		sec, ok = img.SectionByAddr(addr)
	}
	if !ok {
		sec, ok = img.SectionByName(args[1])
	}
	if !ok {
		logflags.CommandLogger().Error("could not find section")
		return nil
	}
	syms := img.FuncsInRange(sec.Addr, sec.Addr+sec.Size)
	sort.Slice(syms, func(a, b int) bool { return syms[a].Addr < syms[b].Addr })
	for _, sym := range syms {
		fmt.Fprintf(e.Out, "%016x %-5s %s\n", sym.Addr, sym.Kind, sym.Name)
	}
	return nil
}

// renderIns formats instructions the way the interactive commands
// print them: address, right-padded hex bytes, mnemonic, operands.
func renderIns(ins []models.Ins) string {
	var width int
	for _, in := range ins {
		if len(in.Bytes()) > width {
			width = len(in.Bytes())
		}
	}
	var out []string
	for _, in := range ins {
		pad := strings.Repeat(" ", (width-len(in.Bytes()))*2)
		data := pad + hex.EncodeToString(in.Bytes())
		out = append(out, fmt.Sprintf("0x%x: %s %s %s", in.Addr(), data, in.Mnemonic(), in.OpStr()))
	}
	return strings.Join(out, "\n")
}

func disassemble(e *Env, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage(e, "disassemble <address or function name> [num of instructions]")
	}
	if !requireSession(e) {
		return nil
	}
	numInstrs := 0
	if len(args) == 3 {
		// an unparseable count falls back to "all"
		numInstrs, _ = strconv.Atoi(args[2])
		if numInstrs < 0 {
			numInstrs = 0
		}
	}
	addr, err := resolveAddr(e.Session.Image, args[1])
	if err != nil {
		logflags.CommandLogger().Error(err)
		return nil
	}
	if addr == 0 {
		logflags.CommandLogger().Error("invalid address or function name")
		return nil
	}
	fmt.Fprintf(e.Out, "Address: %d\nNumInstrs: %d\n", addr, numInstrs)
	ins, err := e.Session.DecodeAt(addr, numInstrs)
	if err != nil {
		logflags.CommandLogger().Error(err)
		return nil
	}
	if len(ins) > 0 {
		fmt.Fprintln(e.Out, renderIns(ins))
	}
	if numInstrs != 0 && len(ins) != numInstrs {
		logflags.CommandLogger().Warnf("%d of %d printed", len(ins), numInstrs)
	}
	return nil
}

func decompile(e *Env, args []string) error {
	if len(args) != 2 {
		return usage(e, "decompile <address or function name>")
	}
	if !requireSession(e) {
		return nil
	}
	addr, err := resolveAddr(e.Session.Image, args[1])
	if err != nil {
		logflags.CommandLogger().Error(err)
		return nil
	}
	if addr == 0 {
		logflags.CommandLogger().Error("invalid address or function name")
		return nil
	}
	fn, err := e.Session.Decompile(addr)
	if err != nil {
		logflags.CommandLogger().Error(err)
		return nil
	}
	if fn == nil {
		logflags.CommandLogger().Errorf("nothing decoded at 0x%x", addr)
		return nil
	}
	_, err = fn.WriteTo(e.Out)
	return err
}

func dump(e *Env, args []string) error {
	if len(args) < 2 {
		return usage(e, "dump <address> [numlines]")
	}
	if !requireSession(e) {
		return nil
	}
	// dump takes a literal address, not a name
	addr, err := strconv.ParseUint(args[1], 0, 64)
	if err != nil {
		logflags.CommandLogger().Error("invalid address")
		return nil
	}
	numLines := 10
	if len(args) >= 3 {
		if n, err := strconv.Atoi(args[2]); err == nil {
			numLines = n
		}
	}
	if err := e.Session.Image.Dump(e.Out, addr, numLines); err != nil {
		logflags.CommandLogger().Error(err)
	}
	return nil
}

func save(e *Env, args []string) error {
	if len(args) != 2 {
		return usage(e, "usage: save <filename.ll>")
	}
	if !requireSession(e) {
		return nil
	}
	f, err := os.Create(args[1])
	if err != nil {
		logflags.CommandLogger().Errorf("errors on write: %v", err)
		return nil
	}
	defer f.Close()
	if _, err := e.Session.Module.WriteTo(f); err != nil {
		logflags.CommandLogger().Errorf("errors on write: %v", err)
	}
	return nil
}

func quit(e *Env, args []string) error {
	// 130 is reserved for fork/exec job control in shells, not an
	// error indicator.
	return models.ExitStatus(130)
}
