package sip

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnrecognized is returned by Parse when the start line matches
// neither a request line nor a response line: the caller
// is expected to hex-dump the datagram at debug level and discard it.
var ErrUnrecognized = errors.New("sip: start line matches neither request nor response")

// requestLineRe accepts any of the recognised methods followed by a
// sip: request-URI and the version token. Trailing URI parameters are
// tolerated (the original engine's rx_request_uri).
var requestLineRe = regexp.MustCompile(`^([A-Za-z]+) sip:([^ ]*?)(?:;[^ ]*)? SIP/2\.0$`)

// responseLineRe matches a status line: "SIP/2.0 <code> <reason...>".
var responseLineRe = regexp.MustCompile(`^SIP/2\.0 (\d+)`)

// Parse splits a raw UDP datagram on CRLF and classifies the start line.
// It never returns a partially-built Message on success: either the
// start line is recognised and Method/URI or Status is populated, or
// ErrUnrecognized is returned and the caller should discard the
// datagram.
func Parse(raw []byte) (*Message, error) {
	lines := strings.Split(string(raw), "\r\n")
	if len(lines) == 0 {
		return nil, ErrUnrecognized
	}
	start := lines[0]

	if md := requestLineRe.FindStringSubmatch(start); md != nil {
		method := Method(strings.ToUpper(md[1]))
		if !requestMethods[method] {
			return nil, ErrUnrecognized
		}
		return &Message{Lines: lines, Kind: KindRequest, Method: method, URI: md[2]}, nil
	}

	if md := responseLineRe.FindStringSubmatch(start); md != nil {
		code, err := strconv.Atoi(md[1])
		if err != nil {
			return nil, ErrUnrecognized
		}
		return &Message{Lines: lines, Kind: KindResponse, Status: code}, nil
	}

	return nil, ErrUnrecognized
}
