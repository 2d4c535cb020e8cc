package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/0Z3/libose/bundle"
	"github.com/0Z3/libose/wire"
)

// assemble turns a tiny line-oriented textual program into a detached
// top-level bundle's worth of OSC messages. Spec §1 puts any real
// front-end parser out of CORE scope as a thin external collaborator;
// this is that thin collaborator, not a general-purpose language.
//
// Each non-blank, non-comment ("#"-prefixed) line has the form:
//
//	/address tag value [tag value ...]
//
// where tag is one of i (int32), f (float32), s (string, rest of the
// token), b (blob, hex-encoded).
func assemble(src string) ([]byte, error) {
	var elems [][]byte

	for lineNo, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		elem, err := assembleLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}

		elems = append(elems, elem)
	}

	return bundle.WrapAsBundleBlob(elems), nil
}

func assembleLine(line string) ([]byte, error) {
	fields := strings.Fields(line)
	if len(fields) < 1 || !strings.HasPrefix(fields[0], "/") {
		return nil, fmt.Errorf("expected address starting with '/', got %q", line)
	}

	address := fields[0]
	rest := fields[1:]

	var tags strings.Builder
	var payload []byte

	for i := 0; i < len(rest); {
		tag := rest[i]
		if len(tag) != 1 {
			return nil, fmt.Errorf("expected single-character type tag, got %q", tag)
		}
		i++

		if i >= len(rest) {
			return nil, fmt.Errorf("tag %q missing a value", tag)
		}

		value := rest[i]
		i++

		buf, width, err := encodeItem(tag[0], value)
		if err != nil {
			return nil, err
		}

		tags.WriteByte(tag[0])
		payload = append(payload, buf[:width]...)
	}

	return bundle.BuildMessage(address, tags.String(), payload), nil
}

func encodeItem(tag byte, value string) ([]byte, int32, error) {
	switch tag {
	case 'i':
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid int32 %q: %w", value, err)
		}

		buf := make([]byte, 4)
		_ = wire.WriteInt32(buf, 0, int32(n))

		return buf, 4, nil
	case 'f':
		n, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid float32 %q: %w", value, err)
		}

		buf := make([]byte, 4)
		_ = wire.WriteFloat32(buf, 0, float32(n))

		return buf, 4, nil
	case 's':
		width := wire.PaddedStringLen(int32(len(value)))
		buf := make([]byte, width)
		_, err := wire.WriteString(buf, 0, value)

		return buf, width, err
	case 'b':
		data, err := hex.DecodeString(value)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid hex blob %q: %w", value, err)
		}

		width := 4 + wire.Align(int32(len(data)))
		buf := make([]byte, width)
		_, err = wire.WriteBlob(buf, 0, data)

		return buf, width, err
	default:
		return nil, 0, fmt.Errorf("unsupported type tag %q", tag)
	}
}
