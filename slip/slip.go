// Package slip implements the SLIP (RFC 1055-style) framing codec used to
// carry OSC messages over a byte stream: END=0xC0, ESC=0xDB, ESC_END=0xDC,
// ESC_ESC=0xDD. It is an external collaborator to the VM core (spec §1,
// §6): the VM itself never sees SLIP framing, only the decoded OSC bytes
// that input_message/input_messages hand it.
package slip

import (
	"bytes"
	"errors"
)

const (
	End    byte = 0xC0
	Esc    byte = 0xDB
	EscEnd byte = 0xDC
	EscEsc byte = 0xDD
)

// ErrDanglingEscape is reported by Flush when the stream ends with a
// trailing ESC that was never resolved by a following ESC_END/ESC_ESC
// byte. (An ESC followed by END inside Write is an invalid escape.)
var ErrDanglingEscape = errors.New("slip: dangling escape at end of frame")

// Encode wraps msg in SLIP framing: a leading END, the escaped content,
// and a trailing END. Emitting the leading END lets a receiver resync
// after a dropped or malformed frame, matching the streaming Decoder's
// End-terminated grouping.
func Encode(msg []byte) []byte {
	out := make([]byte, 0, len(msg)+2)
	out = append(out, End)

	for _, b := range msg {
		switch b {
		case End:
			out = append(out, Esc, EscEnd)
		case Esc:
			out = append(out, Esc, EscEsc)
		default:
			out = append(out, b)
		}
	}

	out = append(out, End)

	return out
}

// Decoder groups a byte stream into complete SLIP frames, unescaping as
// it goes. It is incremental: bytes may be fed in any chunking (as they
// arrive off a UDP socket or stdin), and a frame is only emitted once its
// closing END byte has been seen.
type Decoder struct {
	buf     bytes.Buffer
	escaped bool
	err     error
}

// NewDecoder returns an empty streaming decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Write feeds more stream bytes to the decoder, returning any complete
// frames decoded as a result (zero or more — a single Write can close
// several frames, e.g. back-to-back empty END/END keepalives, which are
// silently dropped like the source's frame grouper). Once Write reports
// a non-nil error the Decoder is in a failed state; callers should
// discard it and start a new one to resynchronise.
func (d *Decoder) Write(p []byte) ([][]byte, error) {
	if d.err != nil {
		return nil, d.err
	}

	var frames [][]byte

	for _, b := range p {
		switch {
		case d.escaped:
			d.escaped = false

			switch b {
			case EscEnd:
				d.buf.WriteByte(End)
			case EscEsc:
				d.buf.WriteByte(Esc)
			default:
				d.err = errors.New("slip: invalid escape sequence")
				return frames, d.err
			}
		case b == Esc:
			d.escaped = true
		case b == End:
			if d.buf.Len() > 0 {
				frame := append([]byte(nil), d.buf.Bytes()...)
				if len(frame)%4 != 0 {
					d.err = errors.New("slip: frame length not a multiple of 4")
					return frames, d.err
				}

				frames = append(frames, frame)
				d.buf.Reset()
			}
		default:
			d.buf.WriteByte(b)
		}
	}

	return frames, nil
}

// Flush reports an error if the stream ended mid-escape or mid-frame
// (a non-empty, un-terminated buffer); callers that need the trailing
// partial bytes can still read them via Pending before discarding the
// decoder.
func (d *Decoder) Flush() error {
	if d.escaped {
		return ErrDanglingEscape
	}

	if d.buf.Len() > 0 {
		return errors.New("slip: incomplete trailing frame")
	}

	return nil
}

// Pending returns the bytes accumulated since the last completed frame
// (i.e. a frame still awaiting its closing END).
func (d *Decoder) Pending() []byte {
	return append([]byte(nil), d.buf.Bytes()...)
}

// DecodeAll is a convenience one-shot decode for a buffer already known
// to hold one or more complete frames (the "asm"/"dump" host commands'
// use case, as opposed to the streaming UDP path).
func DecodeAll(p []byte) ([][]byte, error) {
	d := NewDecoder()

	frames, err := d.Write(p)
	if err != nil {
		return nil, err
	}

	if err := d.Flush(); err != nil {
		return nil, err
	}

	if d.buf.Len() > 0 {
		return nil, errors.New("slip: incomplete trailing frame")
	}

	return frames, nil
}
