// Package arch resolves architecture names to decode-engine builders.
package arch

import (
	"encoding/binary"

	cs "github.com/lunixbochs/capstr"
	"github.com/pkg/errors"

	"github.com/binspect/autodis/cpu"
	"github.com/binspect/autodis/logflags"
	"github.com/binspect/autodis/models"
)

func endianMode(be bool) int {
	if be {
		return cs.MODE_BIG_ENDIAN
	}
	return cs.MODE_LITTLE_ENDIAN
}

// GetArch resolves an architecture name (as detected by a loader or
// forced through the triple) for the given byte order and target
// attributes. Endianness and attributes like "thumb" fold into the
// capstone mode here; unknown attributes warn and are skipped.
func GetArch(name string, byteOrder binary.ByteOrder, attrs []string) (*models.Arch, error) {
	be := byteOrder == binary.BigEndian
	thumb := false
	for _, a := range attrs {
		switch a {
		case "":
		case "thumb", "+thumb":
			thumb = true
		case "be", "+be":
			be = true
		case "le", "+le":
			be = false
		default:
			logflags.SessionLogger().Warnf("ignoring unknown target attribute '%s'", a)
		}
	}
	switch name {
	case "x86":
		return &models.Arch{
			Name: name, Bits: 32,
			Dis: &cpu.Capstr{Arch: cs.ARCH_X86, Mode: cs.MODE_32},
			Alt: &cpu.GoArch{Arch: "x86", Bits: 32},
		}, nil
	case "x86_64":
		return &models.Arch{
			Name: name, Bits: 64,
			Dis: &cpu.Capstr{Arch: cs.ARCH_X86, Mode: cs.MODE_64},
			Alt: &cpu.GoArch{Arch: "x86_64", Bits: 64},
		}, nil
	case "arm":
		mode := cs.MODE_ARM
		if thumb {
			mode = cs.MODE_THUMB
		}
		return &models.Arch{
			Name: name, Bits: 32,
			Dis: &cpu.Capstr{Arch: cs.ARCH_ARM, Mode: mode + endianMode(be)},
		}, nil
	case "arm64":
		return &models.Arch{
			Name: name, Bits: 64,
			Dis: &cpu.Capstr{Arch: cs.ARCH_ARM64, Mode: cs.MODE_ARM + endianMode(be)},
			Alt: &cpu.GoArch{Arch: "arm64", Bits: 64},
		}, nil
	case "mips":
		return &models.Arch{
			Name: name, Bits: 32,
			Dis: &cpu.Capstr{Arch: cs.ARCH_MIPS, Mode: cs.MODE_MIPS32 + endianMode(be)},
		}, nil
	case "mips64":
		return &models.Arch{
			Name: name, Bits: 64,
			Dis: &cpu.Capstr{Arch: cs.ARCH_MIPS, Mode: cs.MODE_MIPS64 + endianMode(be)},
		}, nil
	case "ppc":
		return &models.Arch{
			Name: name, Bits: 32,
			Dis: &cpu.Capstr{Arch: cs.ARCH_PPC, Mode: cs.MODE_32 + endianMode(be)},
		}, nil
	case "ppc64":
		return &models.Arch{
			Name: name, Bits: 64,
			Dis: &cpu.Capstr{Arch: cs.ARCH_PPC, Mode: cs.MODE_64 + endianMode(be)},
		}, nil
	case "sparc":
		return &models.Arch{
			Name: name, Bits: 32,
			Dis: &cpu.Capstr{Arch: cs.ARCH_SPARC, Mode: cs.MODE_BIG_ENDIAN},
		}, nil
	}
	return nil, errors.Errorf("arch '%s' not found", name)
}
