package dhcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTLVRoundTrip(t *testing.T) {
	for tag := 1; tag < 255; tag++ {
		value := []byte{0xDE, 0xAD, 0xBE, 0xEF}
		encoded := tlvEncode(byte(tag), value)
		parsed := tlvParse(append(encoded, optEnd))
		require.Contains(t, parsed, byte(tag))
		assert.Equal(t, value, parsed[byte(tag)][0])
	}
}

func TestTLVParseSkipsPadding(t *testing.T) {
	raw := []byte{optPad, optPad, 53, 1, 0x02, optEnd}
	parsed := tlvParse(raw)
	require.Contains(t, parsed, byte(53))
	assert.Equal(t, []byte{0x02}, parsed[53][0])
}

func TestTLVParseRepeatedTagsAccumulate(t *testing.T) {
	raw := append(tlvEncode(12, []byte("a")), tlvEncode(12, []byte("b"))...)
	raw = append(raw, optEnd)
	parsed := tlvParse(raw)
	require.Len(t, parsed[12], 2)
	assert.Equal(t, []byte("a"), parsed[12][0])
	assert.Equal(t, []byte("b"), parsed[12][1])
}

func buildDiscover(t *testing.T) []byte {
	t.Helper()
	raw := make([]byte, 240)
	raw[0] = 1 // op=BOOTREQUEST
	copy(raw[4:8], []byte{0x01, 0x02, 0x03, 0x04})
	copy(raw[28:34], []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff})
	copy(raw[236:240], magicCookie[:])
	raw = append(raw, tlvEncode(optMessageType, []byte{TypeDiscover})...)
	raw = append(raw, optEnd)
	return raw
}

func TestParseRequest(t *testing.T) {
	raw := buildDiscover(t)
	req, err := ParseRequest(raw)
	require.NoError(t, err)
	assert.Equal(t, [4]byte{0x01, 0x02, 0x03, 0x04}, req.XID)
	assert.Equal(t, [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, req.ClientMAC)
	assert.Equal(t, byte(TypeDiscover), req.messageType())
}

func TestParseRequestRejectsShortDatagram(t *testing.T) {
	_, err := ParseRequest(make([]byte, 10))
	assert.Error(t, err)
}

func TestBuildReplyEncodesOfferedFields(t *testing.T) {
	req, err := ParseRequest(buildDiscover(t))
	require.NoError(t, err)

	params := ReplyParams{
		ServerIP:   [4]byte{192, 168, 1, 1},
		OfferedIP:  [4]byte{192, 168, 1, 50},
		SubnetMask: [4]byte{255, 255, 255, 0},
		FileServer: "192.168.1.1",
		FileName:   "pxelinux.0",
	}
	reply := BuildReply(req, TypeOffer, params)

	assert.Equal(t, byte(2), reply[0]) // op=BOOTREPLY
	assert.Equal(t, []byte{192, 168, 1, 50}, reply[16:20]) // yiaddr
	assert.Equal(t, []byte{192, 168, 1, 1}, reply[20:24])  // siaddr

	opts := tlvParse(reply[240:])
	require.Contains(t, opts, byte(optMessageType))
	assert.Equal(t, byte(TypeOffer), opts[optMessageType][0][0])
	require.Contains(t, opts, byte(optTFTPServer))
	require.Contains(t, opts, byte(optBootFile))
	assert.Equal(t, byte(0), opts[optBootFile][0][len(opts[optBootFile][0])-1])
}

func TestBuildReplyOmitsUnconfiguredOptions(t *testing.T) {
	req, err := ParseRequest(buildDiscover(t))
	require.NoError(t, err)

	reply := BuildReply(req, TypeAck, ReplyParams{
		ServerIP:   [4]byte{10, 0, 0, 1},
		OfferedIP:  [4]byte{10, 0, 0, 5},
		SubnetMask: [4]byte{255, 255, 255, 0},
	})
	opts := tlvParse(reply[240:])
	assert.NotContains(t, opts, byte(optRouter))
	assert.NotContains(t, opts, byte(optDNSServer))
	assert.NotContains(t, opts, byte(optTFTPServer))
	assert.NotContains(t, opts, byte(optBootFile))
}
