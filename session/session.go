// Package session owns the state derived from one load: the image,
// the decode engine constructed for its resolved triple, and the
// lifted module. Load builds a complete replacement session; the
// caller swaps it in and closes the old one, so a command never
// observes a half-updated session or outlives its engine.
package session

import (
	"github.com/pkg/errors"

	"github.com/binspect/autodis/arch"
	"github.com/binspect/autodis/image"
	"github.com/binspect/autodis/lift"
	"github.com/binspect/autodis/logflags"
	"github.com/binspect/autodis/models"
)

// ErrNoEngine is reported when decode commands run against an image
// whose architecture could not be resolved.
var ErrNoEngine = errors.New("no decode engine for this image")

type Session struct {
	Config *models.Config
	Image  *image.Image
	Module *lift.Module

	arch *models.Arch
	dis  models.Dis
}

// New wraps an already-built image and decode engine in a session.
// Load is the usual entry point; New serves callers that construct
// the engine themselves.
func New(cfg *models.Config, img *image.Image, dis models.Dis) *Session {
	return &Session{
		Config: cfg,
		Image:  img,
		Module: lift.NewModule(img.Path),
		dis:    dis,
	}
}

// Load opens the input, resolves the effective triple, and constructs
// the decode engine. Engine construction failure for a resolved arch
// is fatal to the load; an unresolved arch only disables decoding.
func Load(cfg *models.Config, path string) (*Session, error) {
	img, err := image.Load(path)
	if err != nil {
		return nil, err
	}

	// Arch-Vendor-OS[-Env]: an explicit triple replaces the whole
	// auto-detected one; -arch replaces just the arch component.
	triple := img.Triple
	if cfg.Triple != "" {
		triple = models.ParseTriple(cfg.Triple)
	}
	if cfg.Arch != "" {
		triple.SetArch(cfg.Arch)
	}
	img.Triple = triple

	s := &Session{
		Config: cfg,
		Image:  img,
		Module: lift.NewModule(path),
	}
	log := logflags.SessionLogger()
	if triple.Arch == "unknown" {
		log.Warnf("no architecture resolved for %s image; decoding disabled", img.Format)
		return s, nil
	}
	a, err := arch.GetArch(triple.Arch, img.Loader.ByteOrder(), cfg.Attrs)
	if err != nil {
		return nil, err
	}
	s.arch = a
	dis := a.Dis
	if err := dis.Open(); err != nil {
		if a.Alt == nil {
			return nil, errors.Wrapf(err, "cannot initialize decode engine for %s", triple)
		}
		log.WithError(err).Warn("capstone engine unavailable, using pure-go decoder")
		dis = a.Alt
		if err := dis.Open(); err != nil {
			return nil, errors.Wrapf(err, "cannot initialize decode engine for %s", triple)
		}
	}
	s.dis = dis
	log.Debugf("loaded %s (%s, triple %s)", path, img.Format, triple)
	return s, nil
}

// Engine exposes the session's decode engine, nil when decoding is
// disabled.
func (s *Session) Engine() models.Dis {
	return s.dis
}

// Close releases the decode engine. Called only after a replacement
// session has been swapped in, or on process exit.
func (s *Session) Close() error {
	if s.dis != nil {
		return s.dis.Close()
	}
	return nil
}

// funcEnd bounds a function body: the symbol's own size when known,
// otherwise up to the next function symbol, otherwise the section end.
func (s *Session) funcEnd(sym models.Symbol, sec *models.Section) uint64 {
	end := sec.Addr + sec.Size
	if sym.Size > 0 && sym.Addr+sym.Size < end {
		return sym.Addr + sym.Size
	}
	if sym.Size > 0 {
		return end
	}
	next := end
	for _, other := range s.Image.Symbols() {
		if other.Kind == models.SymFunc && other.Addr > sym.Addr && other.Addr < next {
			next = other.Addr
		}
	}
	return next
}

// DecodeFunction decodes the function starting at sym.Addr. A nil
// function with nil error means nothing decodable there (stubs and
// aliases legitimately have no recoverable body): skip, not error.
func (s *Session) DecodeFunction(sym models.Symbol) (*lift.Function, error) {
	if s.dis == nil {
		return nil, ErrNoEngine
	}
	sec, ok := s.Image.SectionByAddr(sym.Addr)
	if !ok {
		return nil, nil
	}
	mem, err := sec.Contents(sym.Addr)
	if err != nil || len(mem) == 0 {
		return nil, nil
	}
	if end := s.funcEnd(sym, sec); end > sym.Addr && end-sym.Addr < uint64(len(mem)) {
		mem = mem[:end-sym.Addr]
	}
	ins, err := s.dis.Dis(mem, sym.Addr)
	if err != nil {
		return nil, err
	}
	if len(ins) == 0 {
		return nil, nil
	}
	return lift.NewFunction(sym.Name, sym.Addr, ins), nil
}

// DecodeAt decodes up to n instructions at addr (0 = until the decode
// stops on its own), for the disassemble command.
func (s *Session) DecodeAt(addr uint64, n int) ([]models.Ins, error) {
	if s.dis == nil {
		return nil, ErrNoEngine
	}
	sec, ok := s.Image.SectionByAddr(addr)
	if !ok {
		return nil, errors.Errorf("no section contains address 0x%x", addr)
	}
	mem, err := sec.Contents(addr)
	if err != nil {
		return nil, err
	}
	ins, err := s.dis.Dis(mem, addr)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(ins) > n {
		ins = ins[:n]
	}
	return ins, nil
}

// Decompile lifts the function at addr into the session module and
// returns it. Addresses without a named function symbol still lift,
// under a synthesized name.
func (s *Session) Decompile(addr uint64) (*lift.Function, error) {
	sym, ok := s.Image.FuncAt(addr)
	if !ok {
		sym = models.Symbol{Name: lift.SynthName(addr), Addr: addr, Kind: models.SymFunc}
	}
	fn, err := s.DecodeFunction(sym)
	if err != nil {
		return nil, err
	}
	if fn == nil || fn.Empty() {
		return nil, nil
	}
	s.Module.Add(fn)
	return fn, nil
}
