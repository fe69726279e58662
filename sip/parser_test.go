package sip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	raw := "REGISTER sip:proxy SIP/2.0\r\nTo: <sip:alice@example.com>\r\n\r\n"
	msg, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, KindRequest, msg.Kind)
	assert.Equal(t, REGISTER, msg.Method)
	assert.Equal(t, "proxy", msg.URI)
}

func TestParseResponse(t *testing.T) {
	raw := "SIP/2.0 200 0K\r\n\r\n"
	msg, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, KindResponse, msg.Kind)
	assert.Equal(t, 200, msg.Status)
}

func TestParseUnrecognized(t *testing.T) {
	_, err := Parse([]byte("garbage line\r\nfoo\r\n"))
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestParseUnknownMethodRejected(t *testing.T) {
	_, err := Parse([]byte("FROBNICATE sip:x SIP/2.0\r\n\r\n"))
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestParseCompactContentLength(t *testing.T) {
	raw := "OPTIONS sip:x SIP/2.0\r\nl: 0\r\n\r\n"
	msg, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.True(t, IsContentLength(msg.Lines[1]))
}
