package sip

import (
	"fmt"
	"strings"
)

// HexDump renders data as hex octets separated by sep, width bytes per
// line, followed by a '.'-for-non-printable ASCII gutter. It reproduces
// the traditional dump format the engine this package replaces used for
// unrecognised datagrams.
func HexDump(data []byte, sep string, width int) []string {
	var out []string
	for len(data) > 0 {
		n := width
		if n > len(data) {
			n = len(data)
		}
		line := data[:n]
		data = data[n:]

		hexParts := make([]string, 0, width)
		for _, b := range line {
			hexParts = append(hexParts, fmt.Sprintf("%02x", b))
		}
		for len(hexParts) < width {
			hexParts = append(hexParts, "00")
		}

		var gutter strings.Builder
		for _, b := range line {
			if b >= 0x20 && b < 0x7f {
				gutter.WriteByte(b)
			} else {
				gutter.WriteByte('.')
			}
		}

		out = append(out, fmt.Sprintf("%s%s%s", strings.Join(hexParts, sep), sep, gutter.String()))
	}
	return out
}
