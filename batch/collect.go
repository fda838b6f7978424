// Package batch implements the map step: walk every function symbol
// in the code section, decode each one, and emit one record per
// instruction for an external reduce stage to aggregate.
package batch

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/binspect/autodis/logflags"
	"github.com/binspect/autodis/session"
)

// Sentinel is the fixed line reporting successful completion of the
// batch to the map/reduce harness. It terminates the record stream.
const Sentinel = "reporter:counter:SkippingTaskCounters,MapProcessedRecords,1"

// Collector drives the per-function decode loop over one session.
type Collector struct {
	Session *session.Session
	Out     io.Writer
}

// Run emits "<mnemonic>\t1" per decoded instruction, in address order
// across each function's blocks, then the completion sentinel. A
// single function failing to decode never aborts the batch; it is
// reported and skipped. Per-function decode state is dropped before
// the next symbol so peak memory does not grow with function count.
func (c *Collector) Run() error {
	img := c.Session.Image
	log := logflags.BatchLogger()

	text, ok := img.TextSection()
	if !ok {
		// no code section means no records, still a successful batch
		log.Warn("no code section found")
		fmt.Fprintln(c.Out, Sentinel)
		return nil
	}
	if c.Session.Engine() == nil {
		return errors.Wrap(session.ErrNoEngine, "batch decode requires a resolved target")
	}

	// range is inclusive on both ends: [base, base+size]
	syms := img.FuncsInRange(text.Addr, text.Addr+text.Size)
	for _, sym := range syms {
		if sym.Addr == 0 || sym.Name == "" {
			continue
		}
		fn, err := c.Session.DecodeFunction(sym)
		if err != nil {
			log.WithError(err).Warnf("skipping %s", sym.Name)
			continue
		}
		if fn == nil || fn.Empty() {
			continue
		}
		for _, block := range fn.Blocks {
			for _, in := range block.Ins {
				fmt.Fprintf(c.Out, "%s\t1\n", in.Mnemonic())
			}
		}
	}

	fmt.Fprintln(c.Out, Sentinel)
	return nil
}
