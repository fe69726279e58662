package sip

import "strings"

// Kind classifies a Message's start line.
type Kind int

const (
	KindUnknown Kind = iota
	KindRequest
	KindResponse
)

// Message is a transient, ordered sequence of CRLF-delimited lines: line 0
// is the start line, followed by the headers, the empty line that
// separates them from the body, and any body lines. Header
// order is preserved on forwarding except where the header rewriter
// mandates insertion at a specific slot.
type Message struct {
	Lines  []string
	Kind   Kind
	Method Method // set when Kind == KindRequest
	URI    string // request-URI when Kind == KindRequest
	Status int    // set when Kind == KindResponse
}

// StartLine returns line 0, or "" for an empty message.
func (m *Message) StartLine() string {
	if len(m.Lines) == 0 {
		return ""
	}
	return m.Lines[0]
}

// String renders the message back to CRLF-joined wire form, terminated
// with an extra empty line as SIP requires.
func (m *Message) String() string {
	var b strings.Builder
	for _, l := range m.Lines {
		b.WriteString(l)
		b.WriteString("\r\n")
	}
	if len(m.Lines) == 0 || m.Lines[len(m.Lines)-1] != "" {
		b.WriteString("\r\n")
	}
	return b.String()
}

// Bytes is a convenience wrapper around String for sendto-style writers.
func (m *Message) Bytes() []byte { return []byte(m.String()) }

// Clone returns a deep-enough copy (a fresh backing line slice) so that
// rewrite helpers, which build new slices anyway, never alias the
// original message's storage.
func (m *Message) Clone() *Message {
	lines := make([]string, len(m.Lines))
	copy(lines, m.Lines)
	return &Message{Lines: lines, Kind: m.Kind, Method: m.Method, URI: m.URI, Status: m.Status}
}
