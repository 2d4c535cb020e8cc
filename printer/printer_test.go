package printer_test

import (
	"bytes"
	"testing"

	"github.com/0Z3/libose/printer"
	"github.com/stretchr/testify/assert"
)

func TestDumpPrintsAddressTagsAndValue(t *testing.T) {
	raw := []byte("/oscillator/4/frequency\x00,f\x00\x00\x43\xdc\x00\x00")

	var buf bytes.Buffer
	assert.NoError(t, printer.Dump(&buf, raw))

	out := buf.String()
	assert.Contains(t, out, "/oscillator/4/frequency")
	assert.Contains(t, out, ",f")
	assert.Contains(t, out, "440")
}

func TestDumpReportsTrailingBytes(t *testing.T) {
	raw := []byte("/oscillator/4/frequency\x00,f\x00\x00\x43\xdc\x00\x00garbage")

	var buf bytes.Buffer
	assert.NoError(t, printer.Dump(&buf, raw))
	assert.Contains(t, buf.String(), "trailing bytes ignored")
}

func TestDumpErrorsOnInvalidPacket(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, printer.Dump(&buf, []byte("not an osc packet")))
}
