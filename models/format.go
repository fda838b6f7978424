package models

// Format identifies the container format of a loaded image. Exactly
// one tag is assigned when the image is loaded and it never changes
// for the lifetime of the Image.
type Format int

const (
	FormatUnknown Format = iota
	FormatELF32LE
	FormatELF32BE
	FormatELF64LE
	FormatELF64BE
	FormatCOFF
)

func (f Format) String() string {
	switch f {
	case FormatELF32LE:
		return "elf32le"
	case FormatELF32BE:
		return "elf32be"
	case FormatELF64LE:
		return "elf64le"
	case FormatELF64BE:
		return "elf64be"
	case FormatCOFF:
		return "coff"
	}
	return "unknown"
}
