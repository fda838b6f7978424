package models

type SymKind int

const (
	SymOther SymKind = iota
	SymFunc
	SymData
)

func (k SymKind) String() string {
	switch k {
	case SymFunc:
		return "FUNC"
	case SymData:
		return "DATA"
	}
	return "OTHER"
}

// Symbol is derived read-only from an image's symbol table. An
// address of 0 is treated as invalid/absent everywhere.
type Symbol struct {
	Name string
	Addr uint64
	Size uint64
	Kind SymKind
}

func (s Symbol) Contains(addr uint64) bool {
	return s.Addr <= addr && (s.Addr+s.Size > addr || s.Size == 0)
}
