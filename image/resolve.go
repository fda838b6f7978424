package image

import "github.com/binspect/autodis/models"

// Symbols returns the symbol table in enumeration order.
func (i *Image) Symbols() []models.Symbol {
	return i.symbols
}

// AddressOf resolves a name to an address: first exact match in
// enumeration order wins. A match whose address is absent (0) is a
// resolution failure even though the name matched.
func (i *Image) AddressOf(name string) (uint64, bool) {
	for _, sym := range i.symbols {
		if sym.Name == name {
			if sym.Addr == 0 {
				return 0, false
			}
			return sym.Addr, true
		}
	}
	return 0, false
}

// FuncsInRange filters the symbol table to function symbols with a
// nonzero address inside [lo, hi], inclusive on both ends, preserving
// enumeration order.
func (i *Image) FuncsInRange(lo, hi uint64) []models.Symbol {
	var ret []models.Symbol
	for _, sym := range i.symbols {
		if sym.Kind != models.SymFunc || sym.Addr == 0 {
			continue
		}
		if lo <= sym.Addr && sym.Addr <= hi {
			ret = append(ret, sym)
		}
	}
	return ret
}

// FuncAt returns the function symbol defined at addr, or the one
// whose body contains it.
func (i *Image) FuncAt(addr uint64) (models.Symbol, bool) {
	for _, sym := range i.symbols {
		if sym.Kind == models.SymFunc && sym.Addr == addr {
			return sym, true
		}
	}
	for _, sym := range i.symbols {
		if sym.Kind == models.SymFunc && sym.Addr != 0 && sym.Size > 0 && sym.Contains(addr) {
			return sym, true
		}
	}
	return models.Symbol{}, false
}
