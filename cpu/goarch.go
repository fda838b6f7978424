package cpu

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"

	"github.com/binspect/autodis/models"
)

// GoArch is a pure-go decode engine backed by golang.org/x/arch. It
// covers x86, x86_64 and arm64 and serves as the fallback when the
// capstone engine cannot be constructed.
type GoArch struct {
	Arch string
	Bits int
}

func (g *GoArch) Open() error {
	switch g.Arch {
	case "x86", "x86_64", "arm64":
		return nil
	}
	return errors.Errorf("no pure-go decoder for arch '%s'", g.Arch)
}

func (g *GoArch) Close() error {
	return nil
}

func (g *GoArch) Dis(mem []byte, addr uint64) ([]models.Ins, error) {
	if g.Arch == "arm64" {
		return g.disArm64(mem, addr), nil
	}
	return g.disX86(mem, addr), nil
}

type goIns struct {
	addr     uint64
	bytes    []byte
	mnemonic string
	opstr    string
}

func (i *goIns) Addr() uint64     { return i.addr }
func (i *goIns) Bytes() []byte    { return i.bytes }
func (i *goIns) Mnemonic() string { return i.mnemonic }
func (i *goIns) OpStr() string    { return i.opstr }

// splitIns separates a rendered instruction into mnemonic and
// operands, lowercased to match capstone's texture.
func splitIns(text string) (string, string) {
	text = strings.ToLower(strings.TrimSpace(text))
	if n := strings.IndexByte(text, ' '); n >= 0 {
		return text[:n], strings.TrimSpace(text[n+1:])
	}
	return text, ""
}

// disX86 decodes linearly and stops at the first undecodable byte,
// the same stop condition capstone uses.
func (g *GoArch) disX86(mem []byte, addr uint64) []models.Ins {
	var ret []models.Ins
	for len(mem) > 0 {
		inst, err := x86asm.Decode(mem, g.Bits)
		if err != nil || inst.Len == 0 {
			break
		}
		mnemonic, opstr := splitIns(x86asm.IntelSyntax(inst, addr, nil))
		ret = append(ret, &goIns{
			addr:     addr,
			bytes:    mem[:inst.Len],
			mnemonic: mnemonic,
			opstr:    opstr,
		})
		mem = mem[inst.Len:]
		addr += uint64(inst.Len)
	}
	return ret
}

func (g *GoArch) disArm64(mem []byte, addr uint64) []models.Ins {
	var ret []models.Ins
	for len(mem) >= 4 {
		inst, err := arm64asm.Decode(mem)
		if err != nil {
			break
		}
		mnemonic, opstr := splitIns(arm64asm.GNUSyntax(inst))
		ret = append(ret, &goIns{
			addr:     addr,
			bytes:    mem[:4],
			mnemonic: mnemonic,
			opstr:    opstr,
		})
		mem = mem[4:]
		addr += 4
	}
	return ret
}
