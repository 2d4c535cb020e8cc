package main

import (
	"fmt"
	"net"
	"time"

	"github.com/0Z3/libose/slip"
)

// Buffer sizes for newUDPHost's internal read buffer, sized for a UDP
// server reading one packet per ReadFrom call.
const (
	bufSizeMaxMTU = 1536
	bufSizeLarge  = 16384
	bufSizeHuge   = 65535
)

// frameHandler processes one fully decoded SLIP frame (a raw OSC message
// or bundle) read from a peer.
type frameHandler = func(addr net.Addr, frame []byte) error

// udpHost is a SLIP-over-UDP reader, grounded on vmc/udp.go's UDPServer:
// a re-usable read buffer plus a per-peer streaming SLIP decoder, since
// unlike VMC's one-packet-one-message framing, SLIP frames are not
// guaranteed to land inside a single UDP datagram.
type udpHost struct {
	conn     net.PacketConn
	buf      []byte
	decoders map[string]*slip.Decoder
}

// newUDPHost creates a SLIP-over-UDP reader on conn with the given
// internal buffer size; prefer one of the bufSize* constants above.
func newUDPHost(conn net.PacketConn, bufSize int) *udpHost {
	return &udpHost{
		conn:     conn,
		buf:      make([]byte, bufSize),
		decoders: make(map[string]*slip.Decoder),
	}
}

// Read waits up to timeout for one datagram and invokes handler once per
// complete SLIP frame it yields, matching UDPServer.Read's "handler may
// run multiple times per read" contract.
func (h *udpHost) Read(timeout time.Duration, handler frameHandler) error {
	if err := h.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("failed to set read deadline on the connection: %w", err)
	}

	n, addr, err := h.conn.ReadFrom(h.buf)
	if err != nil {
		return fmt.Errorf("failed to read from the UDP connection: %w", err)
	}

	dec, ok := h.decoders[addr.String()]
	if !ok {
		dec = slip.NewDecoder()
		h.decoders[addr.String()] = dec
	}

	frames, err := dec.Write(h.buf[:n])
	if err != nil {
		delete(h.decoders, addr.String())
		return fmt.Errorf("failed to decode SLIP frame from %s: %w", addr, err)
	}

	for _, frame := range frames {
		if err := handler(addr, frame); err != nil {
			return fmt.Errorf("failed handling frame from %s: %w", addr, err)
		}
	}

	return nil
}
