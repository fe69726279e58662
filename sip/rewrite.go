package sip

import (
	"fmt"
	"strings"
)

// RemoveHeader returns a copy of lines with every line matched by match
// dropped. Used for Route/Contact/Content-Type/User-Agent/
// Session-Expires/Supported/Content-Disposition/Max-Forwards stripping.
func RemoveHeader(lines []string, match func(string) bool) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !match(line) {
			out = append(out, line)
		}
	}
	return out
}

// InsertAt inserts header at position idx (clamped to len(lines)),
// shifting later lines down.
func InsertAt(lines []string, idx int, header string) []string {
	if idx > len(lines) {
		idx = len(lines)
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:idx]...)
	out = append(out, header)
	out = append(out, lines[idx:]...)
	return out
}

// annotateVia appends the received/rport annotation to an existing Via
// line: a bare ";rport" token becomes "received=<ip>;rport=<port>" in
// place; otherwise ";received=<ip>" is appended.
func annotateVia(line, peerIP string, peerPort int) string {
	if HasRport(line) {
		repl := fmt.Sprintf("received=%s;rport=%d", peerIP, peerPort)
		return strings.Replace(line, "rport", repl, 1)
	}
	return fmt.Sprintf("%s;received=%s", line, peerIP)
}

// AddTopVia inserts a new "Via: <topVia>;branch=<b>" line ahead of each
// existing Via line that carries a branch, and annotates every existing
// Via line with received/rport. topVia is the proxy's own
// Via value without a branch, e.g. "SIP/2.0/UDP 10.0.0.1:5060".
func AddTopVia(lines []string, topVia, peerIP string, peerPort int) []string {
	out := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		if !IsVia(line) {
			out = append(out, line)
			continue
		}
		if branch, ok := ViaBranchOf(line); ok {
			out = append(out, fmt.Sprintf("%s;branch=%s", topVia, branch))
		}
		out = append(out, annotateVia(line, peerIP, peerPort))
	}
	return out
}

// ViaBranchOf extracts the ;branch= token from a single Via line.
func ViaBranchOf(line string) (string, bool) {
	md := branchRe.FindStringSubmatch(line)
	if md == nil {
		return "", false
	}
	return md[1], true
}

// RemoveTopVia drops the first Via line that starts with prefix — the
// proxy's own previously-inserted top Via.
func RemoveTopVia(lines []string, prefix string) []string {
	out := make([]string, 0, len(lines))
	removed := false
	for _, line := range lines {
		if !removed && IsVia(line) && strings.HasPrefix(line, prefix) {
			removed = true
			continue
		}
		out = append(out, line)
	}
	return out
}

// RewriteRequestURI replaces the request-URI on the start line of a
// request message, preserving the method token.
func RewriteRequestURI(lines []string, newURI string) []string {
	if len(lines) == 0 {
		return lines
	}
	md := requestLineRe.FindStringSubmatch(lines[0])
	if md == nil {
		return lines
	}
	out := make([]string, len(lines))
	copy(out, lines)
	out[0] = fmt.Sprintf("%s sip:%s SIP/2.0", md[1], newURI)
	return out
}

// BuildResponse constructs a locally-terminated reply from the inbound
// request's lines: sets the start line to the given status line, adds a
// ";tag=123456" to the To header if absent, applies the received/rport
// Via annotation, zeroes Content-Length, truncates any body, and
// terminates with an empty line.
func BuildResponse(lines []string, statusLine, peerIP string, peerPort int) []string {
	out := make([]string, 0, len(lines)+1)
	out = append(out, statusLine)
	rest := lines
	if len(rest) > 0 {
		rest = rest[1:]
	}
	for _, line := range rest {
		switch {
		case IsTo(line) && !HasTag(line):
			line = line + ";tag=123456"
		case IsVia(line):
			line = annotateVia(line, peerIP, peerPort)
		case IsContentLength(line):
			if strings.HasPrefix(strings.ToLower(line), "l:") {
				line = "l: 0"
			} else {
				line = "Content-Length: 0"
			}
		}
		out = append(out, line)
		if line == "" {
			break
		}
	}
	// Terminate with an empty line, whether or not the loop above already
	// hit one (the original engine always appends a trailing blank line).
	out = append(out, "")
	return out
}
