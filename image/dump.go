package image

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/binspect/autodis/models"
)

// Dump renders numLines rows of 16 bytes starting at addr: absolute
// row address, hex byte pairs grouped in fours, then the same bytes
// as ASCII with non-printables as '.'. Rows past the section end get
// two-space placeholders; nothing past the end is ever read. BSS
// sections get a single skip-marker line instead of fabricated zeros.
func (i *Image) Dump(w io.Writer, addr uint64, numLines int) error {
	sec, ok := i.SectionByAddr(addr)
	if !ok {
		return errors.New("no section found with that name or containing that address")
	}
	fmt.Fprintf(w, "Contents of section %s:\n", sec.Name)
	if sec.Flags&models.SecBSS != 0 {
		fmt.Fprintf(w, "<skipping contents of bss section at [%04x, %04x)>\n",
			sec.Addr, sec.Addr+sec.Size)
		return nil
	}
	end := sec.Addr + uint64(len(sec.Data))
	for index, dumped := addr, 0; index < end && dumped < numLines; index, dumped = index+16, dumped+1 {
		fmt.Fprintf(w, " %04x ", index)
		for n := uint64(0); n < 16; n++ {
			if n != 0 && n%4 == 0 {
				fmt.Fprint(w, " ")
			}
			if index+n < end {
				fmt.Fprintf(w, "%02x", sec.Data[index-sec.Addr+n])
			} else {
				fmt.Fprint(w, "  ")
			}
		}
		fmt.Fprint(w, "  ")
		for n := uint64(0); n < 16 && index+n < end; n++ {
			b := sec.Data[index-sec.Addr+n]
			if b >= 0x20 && b < 0x7f {
				fmt.Fprintf(w, "%c", b)
			} else {
				fmt.Fprint(w, ".")
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
