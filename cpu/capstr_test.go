package cpu

import (
	"fmt"
	"testing"

	"github.com/binspect/autodis/models"
)

func TestDiscache(t *testing.T) {
	dc := discache{cache: make(map[uint64]*discacheEntry)}
	mem := []byte{0xc3}
	dis := []models.Ins{&goIns{addr: 0x1000, bytes: mem, mnemonic: "ret"}}

	if ent := dc.Get(0x1000, mem); ent != nil {
		t.Fatal("hit on an empty cache")
	}
	dc.Put(0x1000, mem, dis)
	ent := dc.Get(0x1000, mem)
	if ent == nil || len(ent.dis) != 1 {
		t.Fatalf("miss after put: %v", ent)
	}
	// same address, different bytes: a stale entry must not serve
	if ent := dc.Get(0x1000, []byte{0x90}); ent != nil {
		t.Fatal("stale bytes served from cache")
	}
}

// The cache drops wholesale at capacity instead of growing without
// bound.
func TestDiscacheBound(t *testing.T) {
	dc := discache{cache: make(map[uint64]*discacheEntry)}
	for i := 0; i < discacheMax+10; i++ {
		addr := uint64(0x1000 + i)
		dc.Put(addr, []byte{byte(i)}, nil)
	}
	if len(dc.cache) > discacheMax {
		t.Fatalf("cache grew to %d entries, cap is %d", len(dc.cache), discacheMax)
	}
}

func TestDiscacheConcurrent(t *testing.T) {
	dc := discache{cache: make(map[uint64]*discacheEntry)}
	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				addr := uint64(g*1000 + i)
				mem := []byte(fmt.Sprintf("%d", addr))
				dc.Put(addr, mem, nil)
				dc.Get(addr, mem)
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}
}
