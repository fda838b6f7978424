package image

import (
	"encoding/binary"
	"testing"

	"github.com/binspect/autodis/internal/testelf"
	"github.com/binspect/autodis/models"
)

func fixtureImage(t *testing.T) *Image {
	t.Helper()
	p := testelf.Build64LE(
		[]testelf.Section{
			testelf.Text(0x1000, []byte{0x55, 0x90, 0x5d, 0xc3, 0x90, 0x90, 0x90, 0xc3}),
			{Name: ".data", Addr: 0x2000, Data: []byte("ABCD"),
				Typ: testelf.TypeProgbits, Flags: testelf.FlagAlloc | testelf.FlagWrite},
			{Name: ".bss", Addr: 0x3000, Size: 0x20,
				Typ: testelf.TypeNobits, Flags: testelf.FlagAlloc | testelf.FlagWrite},
		},
		[]testelf.Symbol{
			// deliberately out of address order
			testelf.Func("helper", 0x1004, 4),
			testelf.Func("main", 0x1000, 4),
			testelf.Func("alias", 0x1004, 0),
			testelf.Func("alias", 0x1000, 4),
			testelf.Func("extern", 0, 0),
			{Name: "gvar", Addr: 0x2000, Size: 4, Info: 0x11},
		},
	)
	img, err := New("fixture", p)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestImageNew(t *testing.T) {
	img := fixtureImage(t)
	if img.Format != models.FormatELF64LE {
		t.Fatalf("format = %v", img.Format)
	}
	want := models.Triple{Arch: "x86_64", Vendor: "unknown", OS: "linux"}
	if img.Triple != want {
		t.Fatalf("triple = %v, want %v", img.Triple, want)
	}
	if len(img.Bytes()) == 0 {
		t.Fatal("raw bytes not retained")
	}
}

// Corrupt input that matches a format magic still yields a usable
// image: the raw bytes behind an Unknown format tag.
func TestImageCorruptInput(t *testing.T) {
	p := []byte{0x7f, 'E', 'L', 'F', 0xff, 0xff, 0xff}
	img, err := New("corrupt", p)
	if err != nil {
		t.Fatal(err)
	}
	if img.Format != models.FormatUnknown {
		t.Fatalf("format = %v, want unknown", img.Format)
	}
	if len(img.Bytes()) != len(p) {
		t.Fatal("raw bytes not retained")
	}
	if len(img.Sections()) != 0 || len(img.Symbols()) != 0 {
		t.Fatal("fallback image must carry empty tables")
	}
}

// A parseable header with an unreadable symbol table degrades to an
// empty table instead of failing the load.
func TestImageCorruptSymtab(t *testing.T) {
	p := testelf.Build64LE(
		[]testelf.Section{testelf.Text(0x1000, []byte{0xc3})},
		[]testelf.Symbol{testelf.Func("main", 0x1000, 1)},
	)
	// point .symtab (section index 2: null, .text, .symtab) far past
	// EOF; sh_offset lives 24 bytes into its 64-byte header
	shoff := binary.LittleEndian.Uint64(p[40:])
	binary.LittleEndian.PutUint64(p[shoff+2*64+24:], 1<<40)
	img, err := New("bad-symtab", p)
	if err != nil {
		t.Fatal(err)
	}
	if img.Format != models.FormatELF64LE {
		t.Fatalf("format = %v", img.Format)
	}
	if len(img.Symbols()) != 0 {
		t.Fatalf("expected an empty symbol table, got %v", img.Symbols())
	}
	sec, ok := img.TextSection()
	if !ok || len(sec.Data) != 1 {
		t.Fatal("section table lost alongside the symbols")
	}
}

func TestSectionByAddr(t *testing.T) {
	img := fixtureImage(t)
	if _, ok := img.SectionByAddr(0xfff); ok {
		t.Fatal("address below .text matched a section")
	}
	sec, ok := img.SectionByAddr(0x1000)
	if !ok || sec.Name != ".text" {
		t.Fatalf("0x1000 resolved to %v", sec)
	}
	sec, ok = img.SectionByAddr(0x1007)
	if !ok || sec.Name != ".text" {
		t.Fatal("last .text address did not resolve")
	}
	if _, ok := img.SectionByAddr(0x1008); ok {
		t.Fatal(".text end address matched, range must be half-open")
	}
	sec, ok = img.SectionByAddr(0x3010)
	if !ok || sec.Name != ".bss" {
		t.Fatal("bss address did not resolve")
	}
}

func TestTextSection(t *testing.T) {
	img := fixtureImage(t)
	sec, ok := img.TextSection()
	if !ok || sec.Name != ".text" {
		t.Fatalf("TextSection = %v, %v", sec, ok)
	}

	// without a ".text" name, the first TEXT-flagged section wins
	p := testelf.Build64LE([]testelf.Section{
		{Name: ".init", Addr: 0x400, Data: []byte{0xc3},
			Typ: testelf.TypeProgbits, Flags: testelf.FlagAlloc | testelf.FlagExec},
	}, nil)
	img2, err := New("init-only", p)
	if err != nil {
		t.Fatal(err)
	}
	sec, ok = img2.TextSection()
	if !ok || sec.Name != ".init" {
		t.Fatalf("fallback TextSection = %v, %v", sec, ok)
	}
}

func TestAddressOf(t *testing.T) {
	img := fixtureImage(t)
	addr, ok := img.AddressOf("main")
	if !ok || addr != 0x1000 {
		t.Fatalf("AddressOf(main) = %#x, %v", addr, ok)
	}
	// first exact match in enumeration order wins
	addr, ok = img.AddressOf("alias")
	if !ok || addr != 0x1004 {
		t.Fatalf("AddressOf(alias) = %#x, %v", addr, ok)
	}
	// a matching name with address 0 is a resolution failure
	if _, ok := img.AddressOf("extern"); ok {
		t.Fatal("zero-address symbol resolved")
	}
	if _, ok := img.AddressOf("nosuchfunc"); ok {
		t.Fatal("unknown name resolved")
	}
}

func TestFuncsInRange(t *testing.T) {
	img := fixtureImage(t)
	// inclusive on both ends
	syms := img.FuncsInRange(0x1000, 0x1004)
	var names []string
	for _, sym := range syms {
		names = append(names, sym.Name)
	}
	want := []string{"helper", "main", "alias", "alias"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v (enumeration order)", names, want)
		}
	}

	// zero-address and non-function symbols never appear
	for _, sym := range img.FuncsInRange(0, ^uint64(0)) {
		if sym.Addr == 0 || sym.Kind != models.SymFunc {
			t.Fatalf("filtered symbol leaked: %+v", sym)
		}
	}

	if syms := img.FuncsInRange(0x1005, 0x1fff); len(syms) != 0 {
		t.Fatalf("empty range returned %v", syms)
	}
}

func TestFuncAt(t *testing.T) {
	img := fixtureImage(t)
	sym, ok := img.FuncAt(0x1000)
	if !ok || sym.Name != "main" {
		t.Fatalf("FuncAt(0x1000) = %+v, %v", sym, ok)
	}
	// interior address resolves through the containing body
	sym, ok = img.FuncAt(0x1006)
	if !ok || sym.Name != "helper" {
		t.Fatalf("FuncAt(0x1006) = %+v, %v", sym, ok)
	}
	if _, ok := img.FuncAt(0x2000); ok {
		t.Fatal("data address resolved to a function")
	}
}
