package models

// Dis is the decode engine contract: raw bytes at an address in,
// a structured instruction sequence out. Engines are owned by the
// session that constructed them and are closed when it is replaced.
type Dis interface {
	Open() error
	Dis(mem []byte, addr uint64) ([]Ins, error)
	Close() error
}

// Arch binds an architecture name to its decode engine builders.
type Arch struct {
	Name string
	Bits int

	Dis Dis // primary engine (capstone)
	Alt Dis // pure-go fallback, nil when x/arch has no decoder
}
