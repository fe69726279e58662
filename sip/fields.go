package sip

import (
	"regexp"
	"strconv"
	"strings"
)

// Field extraction patterns. Two URI flavours are kept
// because To/Contact parsing needs different trailing-delimiter
// tolerance: "with params" stops at ';' or '>', "bare host" stops only
// at '>'.
var (
	uriWithParamsRe = regexp.MustCompile(`sip:([^@]*)@([^;>$]*)`)
	uriRe           = regexp.MustCompile(`sip:([^@]*)@([^>$]*)`)
	addrRe          = regexp.MustCompile(`sip:([^ ;>$]*)`)

	fromRe  = regexp.MustCompile(`(?i)^(From|f):`)
	toRe    = regexp.MustCompile(`(?i)^(To|t):`)
	tagRe   = regexp.MustCompile(`;tag`)
	contRe  = regexp.MustCompile(`(?i)^(Contact|m):`)
	viaRe   = regexp.MustCompile(`(?i)^(Via|v):`)
	routeRe = regexp.MustCompile(`(?i)^Route:`)

	contentLengthRe     = regexp.MustCompile(`(?i)^(Content-Length|l):`)
	contentTypeRe       = regexp.MustCompile(`(?i)^Content-Type:`)
	userAgentRe         = regexp.MustCompile(`(?i)^User-Agent:`)
	contentDispositionRe = regexp.MustCompile(`(?i)^Content-Disposition:`)
	supportedRe         = regexp.MustCompile(`(?i)^Supported:`)
	sessionExpiresRe    = regexp.MustCompile(`(?i)^Session-Expires:`)
	maxForwardRe        = regexp.MustCompile(`(?i)^Max-Forwards:`)

	branchRe  = regexp.MustCompile(`;branch=([^;]*)`)
	rportRe   = regexp.MustCompile(`;rport(;|$)`)
	contactExpiresRe = regexp.MustCompile(`expires=([^;$]*)`)
	expiresHeaderRe  = regexp.MustCompile(`(?i)^Expires:\s*(.*)$`)
	authorizationRe  = regexp.MustCompile(`(?i)^Authorization:\s+\S{6}\s+(.*)`)
	kvRe             = regexp.MustCompile(`^\s*([^=]*?)\s*=\s*(.*?)\s*$`)
)

// IsFrom, IsTo, IsContact, IsVia, IsRoute report whether line is the
// given header in either long or compact form.
func IsFrom(line string) bool    { return fromRe.MatchString(line) }
func IsTo(line string) bool      { return toRe.MatchString(line) }
func IsContact(line string) bool { return contRe.MatchString(line) }
func IsVia(line string) bool     { return viaRe.MatchString(line) }
func IsRoute(line string) bool   { return routeRe.MatchString(line) }

func IsContentLength(line string) bool      { return contentLengthRe.MatchString(line) }
func IsContentType(line string) bool        { return contentTypeRe.MatchString(line) }
func IsUserAgent(line string) bool          { return userAgentRe.MatchString(line) }
func IsContentDisposition(line string) bool { return contentDispositionRe.MatchString(line) }
func IsSupported(line string) bool          { return supportedRe.MatchString(line) }
func IsSessionExpires(line string) bool     { return sessionExpiresRe.MatchString(line) }
func IsMaxForward(line string) bool         { return maxForwardRe.MatchString(line) }

// HasTag reports whether a To/From line already carries a ;tag param.
func HasTag(line string) bool { return tagRe.MatchString(line) }

// uriAoR extracts "user@host" from a header line using the with-params
// flavour when withParams is set and the bare-host flavour otherwise
// (the other flavour is not tried); ok is false when the line carries
// no sip: URI with a user part at all.
func uriAoR(line string, withParams bool) (aor string, ok bool) {
	re := uriRe
	if withParams {
		re = uriWithParamsRe
	}
	md := re.FindStringSubmatch(line)
	if md == nil {
		return "", false
	}
	return md[1] + "@" + md[2], true
}

// ToAoR returns the AoR from the message's To header, bare-host flavour
// (matches proxy.py's changeRequestUri/processRegister use of rx_uri).
func (m *Message) ToAoR() (string, bool) {
	for _, line := range m.Lines {
		if IsTo(line) {
			return uriAoR(line, false)
		}
	}
	return "", false
}

// FromAoR returns the AoR from the message's From header, with-params
// flavour (matches proxy.py's getOrigin use of rx_uri_with_params).
func (m *Message) FromAoR() (string, bool) {
	for _, line := range m.Lines {
		if IsFrom(line) {
			return uriAoR(line, true)
		}
	}
	return "", false
}

// DestinationAoR returns the AoR from the message's To header, letting
// the caller choose the URI flavour (getDestination(with_params=...) in
// proxy.py).
func (m *Message) DestinationAoR(withParams bool) (string, bool) {
	for _, line := range m.Lines {
		if IsTo(line) {
			return uriAoR(line, withParams)
		}
	}
	return "", false
}

// ContactAoR extracts the contact from the Contact header, with a
// fallback from "user@host" form to a bare "host[:port]" form exactly as
// proxy.py's processRegister does (rx_uri then rx_addr).
func (m *Message) ContactAoR() (contact string, ok bool) {
	for _, line := range m.Lines {
		if IsContact(line) {
			if aor, ok := uriAoR(line, false); ok {
				return aor, true
			}
			if md := addrRe.FindStringSubmatch(line); md != nil {
				return md[1], true
			}
			return "", false
		}
	}
	return "", false
}

// ContactExpires returns the Contact header's expires= param, if any.
func (m *Message) ContactExpires() (int, bool) {
	for _, line := range m.Lines {
		if IsContact(line) {
			if md := contactExpiresRe.FindStringSubmatch(line); md != nil {
				if v, err := strconv.Atoi(md[1]); err == nil {
					return v, true
				}
			}
		}
	}
	return 0, false
}

// ExpiresHeader returns the top-level Expires: header value, if any.
func (m *Message) ExpiresHeader() (int, bool) {
	for _, line := range m.Lines {
		if md := expiresHeaderRe.FindStringSubmatch(line); md != nil {
			if v, err := strconv.Atoi(strings.TrimSpace(md[1])); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// AuthorizationIndex returns the index of the Authorization header and
// its parsed k=v map, or ok=false if absent or unparseable.
func (m *Message) AuthorizationIndex() (idx int, params map[string]string, ok bool) {
	for i, line := range m.Lines {
		md := authorizationRe.FindStringSubmatch(line)
		if md == nil {
			continue
		}
		params = map[string]string{}
		for _, elem := range strings.Split(md[1], ",") {
			kv := kvRe.FindStringSubmatch(elem)
			if kv == nil {
				continue
			}
			params[strings.TrimSpace(kv[1])] = strings.Trim(strings.TrimSpace(kv[2]), `"`)
		}
		return i, params, true
	}
	return -1, nil, false
}

// ViaBranch returns the ;branch= token of the message's topmost Via
// header.
func (m *Message) ViaBranch() (string, bool) {
	for _, line := range m.Lines {
		if IsVia(line) {
			if md := branchRe.FindStringSubmatch(line); md != nil {
				return md[1], true
			}
			return "", false
		}
	}
	return "", false
}

// HasRport reports whether line carries a bare ";rport" token (no
// value assigned yet).
func HasRport(line string) bool { return rportRe.MatchString(line) }
