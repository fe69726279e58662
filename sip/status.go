package sip

import "fmt"

// reasonPhrases holds the canonical reason phrase for each status code
// this appliance ever emits locally. 200 is deliberately "0K" (digit
// zero), not "OK": the engine this package reimplements replies with
// that literal string, and a faithful rewrite must not silently "fix"
// it.
var reasonPhrases = map[int]string{
	200: "0K",
	302: "Moved Temporarily",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	480: "Temporarily Unavailable",
	500: "Server Internal Error",
}

// StatusLine formats a local "SIP/2.0 <code> <reason>" start line using
// the canonical reason phrase, or "Unknown" if code isn't one this
// appliance ever sends.
func StatusLine(code int) string {
	reason, ok := reasonPhrases[code]
	if !ok {
		reason = "Unknown"
	}
	return fmt.Sprintf("SIP/2.0 %d %s", code, reason)
}
