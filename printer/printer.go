// Package printer pretty-prints decoded OSC packets for the "dump" host
// command and for interactive inspection, colorizing addresses and type
// tags when stdout is a terminal. It is an external collaborator to the
// VM core (spec §1): the VM never formats its own bundles for humans.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/0Z3/libose/osc"
	"github.com/fatih/color"
)

// Printer writes human-readable renderings of osc.Packet values to an
// io.Writer, colorizing when the destination is a terminal (detected by
// the caller and passed in via New's color.NoColor-aware
// defaults, matching how fatih/color itself auto-detects TTYs).
type Printer struct {
	w io.Writer

	address *color.Color
	tags    *color.Color
	value   *color.Color
}

// New returns a Printer writing to w. Colorizing follows package
// fatih/color's global NoColor detection (disabled automatically when
// stdout is not a terminal) rather than probing w's file descriptor.
func New(w io.Writer) *Printer {
	return &Printer{
		w:       w,
		address: color.New(color.FgCyan, color.Bold),
		tags:    color.New(color.FgYellow),
		value:   color.New(color.FgGreen),
	}
}

// PrintPacket writes a one-line-per-message rendering of p, indenting
// nested bundle contents.
func (p *Printer) PrintPacket(pkt *osc.Packet) {
	p.printPacket(pkt, 0)
}

func (p *Printer) printPacket(pkt *osc.Packet, depth int) {
	indent := strings.Repeat("  ", depth)

	switch {
	case pkt.Message != nil:
		p.printMessage(pkt.Message, indent)
	case pkt.Bundle != nil:
		fmt.Fprintf(p.w, "%s#bundle (timetag=%d)\n", indent, pkt.Bundle.TimeTag)

		for _, child := range pkt.Bundle.Contents {
			p.printPacket(&child, depth+1)
		}
	default:
		fmt.Fprintf(p.w, "%s<invalid packet>\n", indent)
	}
}

func (p *Printer) printMessage(m *osc.Message, indent string) {
	fmt.Fprintf(p.w, "%s%s %s %s\n",
		indent,
		p.address.Sprint(m.Address),
		p.tags.Sprintf(",%s", m.TypeTags),
		p.value.Sprint(formatArgs(m.Arguments)),
	)
}

func formatArgs(args []interface{}) string {
	parts := make([]string, len(args))

	for i, a := range args {
		switch v := a.(type) {
		case []byte:
			parts[i] = fmt.Sprintf("<%d bytes>", len(v))
		case nil:
			parts[i] = "nil"
		default:
			parts[i] = fmt.Sprintf("%v", v)
		}
	}

	return strings.Join(parts, " ")
}

// Dump is a convenience one-shot entry point for the "dump" command: it
// parses raw OSC bytes and writes the pretty-printed rendering to w.
func Dump(w io.Writer, raw []byte) error {
	pkt, rest, err := osc.ReadPacket(raw)
	if err != nil {
		return err
	}

	New(w).PrintPacket(pkt)

	if len(rest) > 0 {
		fmt.Fprintf(w, "(%d trailing bytes ignored)\n", len(rest))
	}

	return nil
}
