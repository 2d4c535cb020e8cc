package main

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/0Z3/libose/slip"
	"github.com/stretchr/testify/assert"
)

func TestUDPHostDecodesOneFramePerDatagram(t *testing.T) {
	serverConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	assert.NoError(t, err)
	defer serverConn.Close()

	clientConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	assert.NoError(t, err)
	defer clientConn.Close()

	framed := slip.Encode([]byte("ping"))
	_, err = clientConn.WriteTo(framed, serverConn.LocalAddr())
	assert.NoError(t, err)

	host := newUDPHost(serverConn, bufSizeMaxMTU)

	var mu sync.Mutex
	var got [][]byte

	err = host.Read(2*time.Second, func(addr net.Addr, frame []byte) error {
		mu.Lock()
		got = append(got, append([]byte(nil), frame...))
		mu.Unlock()

		return nil
	})
	assert.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 1)
	assert.Equal(t, []byte("ping"), got[0])
}

func TestUDPHostReportsReadTimeout(t *testing.T) {
	serverConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	assert.NoError(t, err)
	defer serverConn.Close()

	host := newUDPHost(serverConn, bufSizeMaxMTU)

	err = host.Read(10*time.Millisecond, func(addr net.Addr, frame []byte) error {
		return nil
	})
	assert.Error(t, err)
}
