package cpu

import (
	"bytes"
	"sync"

	cs "github.com/lunixbochs/capstr"
	"github.com/pkg/errors"

	"github.com/binspect/autodis/models"
)

// discacheMax bounds the decode cache; a full cache is dropped
// wholesale so batch runs stay flat regardless of function count.
const discacheMax = 128

type discacheEntry struct {
	addr uint64
	mem  []byte
	dis  []models.Ins
}

type discache struct {
	sync.RWMutex
	cache map[uint64]*discacheEntry
}

func (d *discache) Get(addr uint64, mem []byte) *discacheEntry {
	d.RLock()
	defer d.RUnlock()

	if ent, ok := d.cache[addr]; ok {
		if bytes.Equal(mem, ent.mem) {
			return ent
		}
	}
	return nil
}

func (d *discache) Put(addr uint64, mem []byte, dis []models.Ins) {
	d.Lock()
	defer d.Unlock()

	if len(d.cache) >= discacheMax {
		d.cache = make(map[uint64]*discacheEntry)
	}
	d.cache[addr] = &discacheEntry{
		addr: addr,
		mem:  mem,
		dis:  dis,
	}
}

// Capstr drives capstone through the capstr bindings. One engine is
// constructed per session and released when the session is replaced.
type Capstr struct {
	Arch, Mode int

	cs *cs.Engine
	dc discache
}

func (c *Capstr) Open() (err error) {
	engine, err := cs.New(c.Arch, c.Mode)
	if err == nil {
		c.cs = engine
		c.dc.cache = make(map[uint64]*discacheEntry)
	}
	return errors.Wrap(err, "cs.New() failed")
}

func (c *Capstr) Dis(mem []byte, addr uint64) ([]models.Ins, error) {
	if c.cs == nil {
		if err := c.Open(); err != nil {
			return nil, err
		}
	}
	if ent := c.dc.Get(addr, mem); ent != nil {
		return ent.dis, nil
	}
	dis, err := c.cs.Dis(mem, addr, 0)
	if err != nil {
		return nil, errors.Wrap(err, "capstone disassembly failed")
	}
	ret := make([]models.Ins, len(dis))
	for i, v := range dis {
		ret[i] = v
	}
	c.dc.Put(addr, mem, ret)
	return ret, nil
}

func (c *Capstr) Close() error {
	c.cs = nil
	c.dc.cache = nil
	return nil
}
