package sip

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTopViaWithRport(t *testing.T) {
	lines := []string{
		"INVITE sip:bob@example.com SIP/2.0",
		"Via: SIP/2.0/UDP 192.168.1.50:5060;branch=z9hG4bK776asdhds;rport",
	}
	out := AddTopVia(lines, "Via: SIP/2.0/UDP 10.0.0.1:5060", "203.0.113.9", 34567)
	require.Len(t, out, 3)
	assert.Equal(t, "Via: SIP/2.0/UDP 10.0.0.1:5060;branch=z9hG4bK776asdhds", out[1])
	assert.Contains(t, out[2], "received=203.0.113.9;rport=34567")
	assert.False(t, strings.Contains(out[2], ";rport\n"))
}

func TestAddTopViaWithoutRport(t *testing.T) {
	lines := []string{
		"INVITE sip:bob@example.com SIP/2.0",
		"Via: SIP/2.0/UDP 192.168.1.50:5060;branch=abc",
	}
	out := AddTopVia(lines, "Via: SIP/2.0/UDP 10.0.0.1:5060", "203.0.113.9", 34567)
	require.Len(t, out, 3)
	assert.Equal(t, "Via: SIP/2.0/UDP 192.168.1.50:5060;branch=abc;received=203.0.113.9", out[2])
}

func TestRemoveTopVia(t *testing.T) {
	lines := []string{
		"SIP/2.0 200 0K",
		"Via: SIP/2.0/UDP 10.0.0.1:5060;branch=abc",
		"Via: SIP/2.0/UDP 192.168.1.50:5060;branch=abc;received=203.0.113.9",
	}
	out := RemoveTopVia(lines, "Via: SIP/2.0/UDP 10.0.0.1:5060")
	require.Len(t, out, 2)
	assert.Contains(t, out[1], "192.168.1.50")
}

func TestRewriteRequestURI(t *testing.T) {
	lines := []string{"INVITE sip:alice@registrar SIP/2.0"}
	out := RewriteRequestURI(lines, "bob@192.168.1.60:5060")
	assert.Equal(t, "INVITE sip:bob@192.168.1.60:5060 SIP/2.0", out[0])
}

func TestRemoveHeaderStripsRoute(t *testing.T) {
	lines := []string{
		"BYE sip:bob@1.2.3.4 SIP/2.0",
		"Route: <sip:proxy;lr>",
		"Call-ID: abc",
	}
	out := RemoveHeader(lines, IsRoute)
	require.Len(t, out, 2)
	assert.NotContains(t, out, "Route: <sip:proxy;lr>")
}

func TestInsertAt(t *testing.T) {
	lines := []string{"a", "b", "c"}
	out := InsertAt(lines, 1, "x")
	assert.Equal(t, []string{"a", "x", "b", "c"}, out)
}

func TestBuildResponseAddsTagZerosLengthAndTerminates(t *testing.T) {
	lines := []string{
		"REGISTER sip:proxy SIP/2.0",
		"To: <sip:alice@example.com>",
		"Via: SIP/2.0/UDP 192.168.1.50:5060;rport",
		"Content-Length: 42",
		"",
		"ignored body",
	}
	out := BuildResponse(lines, StatusLine(200), "203.0.113.9", 34567)
	assert.Equal(t, "SIP/2.0 200 0K", out[0])
	assert.Contains(t, out[1], ";tag=123456")
	assert.Contains(t, out[2], "received=203.0.113.9;rport=34567")
	assert.Equal(t, "Content-Length: 0", out[3])
	assert.Equal(t, "", out[4])
	assert.Equal(t, "", out[len(out)-1])
	assert.NotContains(t, out, "ignored body")
}

func TestBuildResponsePreservesExistingTag(t *testing.T) {
	lines := []string{
		"REGISTER sip:proxy SIP/2.0",
		"To: <sip:alice@example.com>;tag=xyz",
		"",
	}
	out := BuildResponse(lines, StatusLine(401), "203.0.113.9", 34567)
	assert.Equal(t, "To: <sip:alice@example.com>;tag=xyz", out[1])
}
