package batch

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"

	"github.com/binspect/autodis/image"
	"github.com/binspect/autodis/internal/testelf"
	"github.com/binspect/autodis/models"
	"github.com/binspect/autodis/session"
)

type stubIns struct {
	addr     uint64
	mnemonic string
}

func (i *stubIns) Addr() uint64     { return i.addr }
func (i *stubIns) Bytes() []byte    { return []byte{0x90} }
func (i *stubIns) Mnemonic() string { return i.mnemonic }
func (i *stubIns) OpStr() string    { return "" }

type stubDis struct {
	prog map[uint64][]models.Ins
	errs map[uint64]error
}

func (d *stubDis) Open() error  { return nil }
func (d *stubDis) Close() error { return nil }

func (d *stubDis) Dis(mem []byte, addr uint64) ([]models.Ins, error) {
	if err := d.errs[addr]; err != nil {
		return nil, err
	}
	return d.prog[addr], nil
}

func seq(addr uint64, mnemonics ...string) []models.Ins {
	var ret []models.Ins
	for _, mn := range mnemonics {
		ret = append(ret, &stubIns{addr: addr, mnemonic: mn})
		addr++
	}
	return ret
}

func collectorFor(t *testing.T, p []byte, dis models.Dis, out *bytes.Buffer) *Collector {
	t.Helper()
	img, err := image.New("fixture", p)
	if err != nil {
		t.Fatal(err)
	}
	s := session.New(&models.Config{}, img, dis)
	return &Collector{Session: s, Out: out}
}

// The record stream is one "<mnemonic>\t1" line per instruction in
// address order, terminated by the sentinel, with nothing else on it.
func TestCollectorRun(t *testing.T) {
	p := testelf.Build64LE(
		[]testelf.Section{testelf.Text(0x1000, make([]byte, 8))},
		[]testelf.Symbol{
			testelf.Func("main", 0x1000, 4),
			testelf.Func("helper", 0x1004, 4),
			testelf.Func("extern", 0, 0),
		},
	)
	dis := &stubDis{prog: map[uint64][]models.Ins{
		0x1000: seq(0x1000, "mov", "mov", "ret"),
		0x1004: seq(0x1004, "nop", "jmp"),
	}}
	var out bytes.Buffer
	c := collectorFor(t, p, dis, &out)
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	want := "mov\t1\nmov\t1\nret\t1\nnop\t1\njmp\t1\n" + Sentinel + "\n"
	if got := out.String(); got != want {
		t.Fatalf("record stream mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

// One function failing to decode is skipped; the batch still completes
// and emits the sentinel.
func TestCollectorSkipsFailedFunction(t *testing.T) {
	p := testelf.Build64LE(
		[]testelf.Section{testelf.Text(0x1000, make([]byte, 8))},
		[]testelf.Symbol{
			testelf.Func("bad", 0x1000, 4),
			testelf.Func("good", 0x1004, 4),
		},
	)
	dis := &stubDis{
		prog: map[uint64][]models.Ins{0x1004: seq(0x1004, "ret")},
		errs: map[uint64]error{0x1000: errors.New("undecodable")},
	}
	var out bytes.Buffer
	c := collectorFor(t, p, dis, &out)
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	want := "ret\t1\n" + Sentinel + "\n"
	if got := out.String(); got != want {
		t.Fatalf("record stream mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

// No code section is still a successful batch: just the sentinel.
func TestCollectorNoTextSection(t *testing.T) {
	p := testelf.Build64LE([]testelf.Section{
		{Name: ".data", Addr: 0x2000, Data: []byte{1, 2, 3, 4},
			Typ: testelf.TypeProgbits, Flags: testelf.FlagAlloc | testelf.FlagWrite},
	}, nil)
	var out bytes.Buffer
	c := collectorFor(t, p, &stubDis{}, &out)
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != Sentinel+"\n" {
		t.Fatalf("expected only the sentinel, got %q", got)
	}
}

// A code section with no decode engine is an error: records would be
// silently missing otherwise.
func TestCollectorNoEngine(t *testing.T) {
	p := testelf.Build64LE(
		[]testelf.Section{testelf.Text(0x1000, make([]byte, 8))},
		[]testelf.Symbol{testelf.Func("main", 0x1000, 8)},
	)
	var out bytes.Buffer
	c := collectorFor(t, p, nil, &out)
	err := c.Run()
	if errors.Cause(err) != session.ErrNoEngine {
		t.Fatalf("expected ErrNoEngine, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("no records may be emitted on failure, got %q", out.String())
	}
}
