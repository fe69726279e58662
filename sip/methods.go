package sip

// Method is a SIP request method token.
type Method string

const (
	REGISTER  Method = "REGISTER"
	INVITE    Method = "INVITE"
	ACK       Method = "ACK"
	PRACK     Method = "PRACK"
	CANCEL    Method = "CANCEL"
	BYE       Method = "BYE"
	OPTIONS   Method = "OPTIONS"
	SUBSCRIBE Method = "SUBSCRIBE"
	PUBLISH   Method = "PUBLISH"
	NOTIFY    Method = "NOTIFY"
	INFO      Method = "INFO"
	MESSAGE   Method = "MESSAGE"
	REFER     Method = "REFER"
	UPDATE    Method = "UPDATE"
)

// requestMethods is the set of methods the message parser recognises on a
// request start line.
var requestMethods = map[Method]bool{
	REGISTER: true, INVITE: true, ACK: true, PRACK: true, CANCEL: true,
	BYE: true, OPTIONS: true, SUBSCRIBE: true, PUBLISH: true, NOTIFY: true,
	INFO: true, MESSAGE: true, REFER: true, UPDATE: true,
}

// nonInviteProxied is the set of methods routed through the non-INVITE
// proxy flow.
var nonInviteProxied = map[Method]bool{
	BYE: true, CANCEL: true, OPTIONS: true, MESSAGE: true, REFER: true,
	PRACK: true, UPDATE: true, SUBSCRIBE: true, NOTIFY: true,
}

// localReply200 is the set of methods answered locally with 200 without
// ever touching the registrar.
var localReply200 = map[Method]bool{
	INFO: true, PUBLISH: true,
}

// IsNonInviteProxied reports whether m is forwarded via the non-INVITE
// proxy flow.
func IsNonInviteProxied(m Method) bool { return nonInviteProxied[m] }

// IsLocalReply200 reports whether m is answered locally with 200 without
// registrar involvement.
func IsLocalReply200(m Method) bool { return localReply200[m] }
