package image

import (
	"bytes"
	"strings"
	"testing"

	"github.com/binspect/autodis/internal/testelf"
)

func dumpImage(t *testing.T) *Image {
	t.Helper()
	p := testelf.Build64LE([]testelf.Section{
		{Name: ".data", Addr: 0x100, Data: []byte("ABCDEFGHIJKLMNOPQRST"),
			Typ: testelf.TypeProgbits, Flags: testelf.FlagAlloc | testelf.FlagWrite},
		{Name: ".bss", Addr: 0x3000, Size: 0x20,
			Typ: testelf.TypeNobits, Flags: testelf.FlagAlloc | testelf.FlagWrite},
	}, nil)
	img, err := New("dump-fixture", p)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestDump(t *testing.T) {
	img := dumpImage(t)
	var buf bytes.Buffer
	if err := img.Dump(&buf, 0x100, 10); err != nil {
		t.Fatal(err)
	}
	want := "Contents of section .data:\n" +
		" 0100 41424344 45464748 494a4b4c 4d4e4f50  ABCDEFGHIJKLMNOP\n" +
		" 0110 51525354" + strings.Repeat(" ", 29) + "QRST\n"
	if got := buf.String(); got != want {
		t.Fatalf("dump mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

// numLines caps the output; the dump never reads past the section.
func TestDumpLineLimit(t *testing.T) {
	img := dumpImage(t)
	var buf bytes.Buffer
	if err := img.Dump(&buf, 0x100, 1); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines:\n%s", len(lines), buf.String())
	}
}

// A dump can start mid-section; rows are addressed from the request,
// not realigned.
func TestDumpUnaligned(t *testing.T) {
	img := dumpImage(t)
	var buf bytes.Buffer
	if err := img.Dump(&buf, 0x104, 1); err != nil {
		t.Fatal(err)
	}
	want := "Contents of section .data:\n" +
		" 0104 45464748 494a4b4c 4d4e4f50 51525354  EFGHIJKLMNOPQRST\n"
	if got := buf.String(); got != want {
		t.Fatalf("dump mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

// Bytes outside 0x20..0x7e render as '.' in the ASCII column.
func TestDumpNonPrintable(t *testing.T) {
	p := testelf.Build64LE([]testelf.Section{
		{Name: ".rodata", Addr: 0x200, Data: []byte{0x00, 0x41, 0x7f, 0x20},
			Typ: testelf.TypeProgbits, Flags: testelf.FlagAlloc},
	}, nil)
	img, err := New("rodata-fixture", p)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := img.Dump(&buf, 0x200, 1); err != nil {
		t.Fatal(err)
	}
	want := "Contents of section .rodata:\n" +
		" 0200 00417f20" + strings.Repeat(" ", 29) + ".A. \n"
	if got := buf.String(); got != want {
		t.Fatalf("dump mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestDumpBSS(t *testing.T) {
	img := dumpImage(t)
	var buf bytes.Buffer
	if err := img.Dump(&buf, 0x3008, 10); err != nil {
		t.Fatal(err)
	}
	want := "Contents of section .bss:\n" +
		"<skipping contents of bss section at [3000, 3020)>\n"
	if got := buf.String(); got != want {
		t.Fatalf("bss dump mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestDumpNoSection(t *testing.T) {
	img := dumpImage(t)
	var buf bytes.Buffer
	err := img.Dump(&buf, 0xdead0000, 10)
	if err == nil {
		t.Fatal("expected an error for an unmapped address")
	}
	if err.Error() != "no section found with that name or containing that address" {
		t.Fatalf("wrong error: %v", err)
	}
}
