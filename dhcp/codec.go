package dhcp

import (
	"encoding/binary"
	"fmt"
)

// magicCookie is the fixed BOOTP/DHCP options marker (RFC 2131 3.)
var magicCookie = [4]byte{0x63, 0x82, 0x53, 0x63}

// Option type values this responder classifies incoming requests by
// and the tags it emits.
const (
	optSubnetMask  = 1
	optRouter      = 3
	optDNSServer   = 6
	optRequestedIP = 50
	optLeaseTime   = 51
	optMessageType = 53
	optServerID    = 54
	optTFTPServer  = 66
	optBootFile    = 67
	optEnd         = 255
	optPad         = 0
)

// Message type values carried in option 53.
const (
	TypeDiscover = 1
	TypeOffer    = 2
	TypeRequest  = 3
	TypeAck      = 5
)

// Request is a decoded inbound BOOTP/DHCP datagram: the fields the
// responder actually needs, not a full RFC 2131 field-by-field model.
type Request struct {
	XID     [4]byte
	ClientMAC [6]byte
	Options map[byte][][]byte
}

// messageType returns the option-53 value, or 0 if absent.
func (r Request) messageType() byte {
	vals, ok := r.Options[optMessageType]
	if !ok || len(vals[0]) == 0 {
		return 0
	}
	return vals[0][0]
}

// ParseRequest decodes a raw inbound datagram's fixed header and
// trailing TLV options. It expects at least the 236-byte fixed BOOTP
// section plus the 4-byte magic cookie before the options begin at
// offset 240, as every BOOTP/DHCP client transmits.
func ParseRequest(raw []byte) (Request, error) {
	if len(raw) < 240 {
		return Request{}, fmt.Errorf("dhcp: datagram too short (%d bytes)", len(raw))
	}
	var req Request
	copy(req.XID[:], raw[4:8])
	copy(req.ClientMAC[:], raw[28:34])
	req.Options = tlvParse(raw[240:])
	return req, nil
}

// tlvEncode encodes a single tag/value TLV option.
func tlvEncode(tag byte, value []byte) []byte {
	out := make([]byte, 0, 2+len(value))
	out = append(out, tag, byte(len(value)))
	return append(out, value...)
}

// tlvParse decodes a TLV option stream: tag 0 is one byte of padding,
// tag 255 terminates, otherwise a length byte followed by that many
// value bytes. Repeated tags accumulate into a list.
func tlvParse(raw []byte) map[byte][][]byte {
	ret := make(map[byte][][]byte)
	for len(raw) > 0 {
		tag := raw[0]
		if tag == optPad {
			raw = raw[1:]
			continue
		}
		if tag == optEnd {
			break
		}
		if len(raw) < 2 {
			break
		}
		length := int(raw[1])
		if len(raw) < 2+length {
			break
		}
		value := raw[2 : 2+length]
		ret[tag] = append(ret[tag], value)
		raw = raw[2+length:]
	}
	return ret
}

// ReplyParams carries the fields craftHeader/craftOptions needs beyond
// what's already on the Request, i.e. the configured server identity.
type ReplyParams struct {
	ServerIP   [4]byte
	OfferedIP  [4]byte
	SubnetMask [4]byte
	Router     [4]byte // zero value means omit option 3
	DNSServer  [4]byte // zero value means omit option 6
	FileServer string  // empty means omit option 66
	FileName   string  // empty means omit option 67
}

// BuildReply crafts a full OFFER or ACK datagram (fixed header plus
// options) for req, per RFC 2131/2132.
func BuildReply(req Request, msgType byte, p ReplyParams) []byte {
	out := make([]byte, 0, 300)

	out = append(out, 2, 1, 6, 0)           // op=BOOTREPLY, htype=ethernet, hlen=6, hops=0
	out = append(out, req.XID[:]...)        // xid echoed
	out = append(out, 0, 0, 0, 0)           // secs=0, flags=0
	out = append(out, 0, 0, 0, 0)           // ciaddr=0
	out = append(out, p.OfferedIP[:]...)    // yiaddr
	out = append(out, p.ServerIP[:]...)     // siaddr
	out = append(out, 0, 0, 0, 0)           // giaddr=0.0.0.0
	out = append(out, req.ClientMAC[:]...)  // chaddr, first 6 bytes
	out = append(out, make([]byte, 10)...)  // chaddr padding to 16 bytes
	out = append(out, make([]byte, 64)...)  // sname
	out = append(out, make([]byte, 128)...) // file
	out = append(out, magicCookie[:]...)

	out = append(out, tlvEncode(optMessageType, []byte{msgType})...)
	out = append(out, tlvEncode(optServerID, p.ServerIP[:])...)
	out = append(out, tlvEncode(optSubnetMask, p.SubnetMask[:])...)
	if p.Router != ([4]byte{}) {
		out = append(out, tlvEncode(optRouter, p.Router[:])...)
	}
	if p.DNSServer != ([4]byte{}) {
		out = append(out, tlvEncode(optDNSServer, p.DNSServer[:])...)
	}
	leaseTime := make([]byte, 4)
	binary.BigEndian.PutUint32(leaseTime, uint32(LeaseDuration.Seconds()))
	out = append(out, tlvEncode(optLeaseTime, leaseTime)...)
	if p.FileServer != "" {
		out = append(out, tlvEncode(optTFTPServer, []byte(p.FileServer))...)
	}
	if p.FileName != "" {
		out = append(out, tlvEncode(optBootFile, append([]byte(p.FileName), 0))...)
	}
	out = append(out, optEnd)
	return out
}
