// Package sipproxy implements the SIP request dispatcher and wires it
// to the registrar store, digest auth helper and header rewriter to
// act as either a stateful proxy (with Record-Route insertion and Via
// rewriting) or a redirect server.
package sipproxy

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/svenno/splitgo/digest"
	"github.com/svenno/splitgo/internal/config"
	"github.com/svenno/splitgo/internal/metrics"
	"github.com/svenno/splitgo/registrar"
	"github.com/svenno/splitgo/sip"
)

// Dispatcher routes an inbound SIP datagram according to its method
// and the configured proxy/redirect mode.
type Dispatcher struct {
	cfg        *config.Config
	store      *registrar.Store
	nonces     *digest.Nonces
	log        *slog.Logger
	transcript *slog.Logger

	topVia      string
	recordRoute string
}

// NewDispatcher builds a Dispatcher bound to store and nonces, which
// the caller owns (so the same store can in principle be shared by
// more than one SIP worker). transcript receives one debug line per
// datagram sent or received — the Go equivalent of the original
// sip_logger wire trace; pass the same logger as log when no separate
// SIP transcript sink is configured.
func NewDispatcher(cfg *config.Config, store *registrar.Store, nonces *digest.Nonces, log *slog.Logger, transcript *slog.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:         cfg,
		store:       store,
		nonces:      nonces,
		log:         log,
		transcript:  transcript,
		topVia:      fmt.Sprintf("Via: SIP/2.0/UDP %s:%d", cfg.SIP.ExposedIP, cfg.SIP.ExposedPort),
		recordRoute: fmt.Sprintf("Record-Route: <sip:%s:%d;lr>", cfg.SIP.ExposedIP, cfg.SIP.ExposedPort),
	}
}

// Handle parses one inbound UDP datagram and dispatches it. Malformed
// datagrams are discarded; those longer than four bytes are first
// hex-dumped at debug level. Every
// datagram is tagged with a fresh trace id so its log lines, including
// any reply or forward it provokes, can be correlated.
func (d *Dispatcher) Handle(raw []byte, conn net.PacketConn, peer *net.UDPAddr) {
	log := d.log.With("trace_id", uuid.NewString())

	msg, err := sip.Parse(raw)
	if err != nil {
		if len(raw) > 4 {
			log.Debug("discarding unrecognized datagram", "peer", peer.String(), "hex", strings.Join(sip.HexDump(raw, " ", 16), "\n"))
		}
		return
	}

	d.transcript.Debug("received from", "peer", peer.String(), "data", string(raw))

	switch msg.Kind {
	case sip.KindRequest:
		metrics.SIPRequestsTotal.WithLabelValues(string(msg.Method)).Inc()
		d.handleRequest(msg, conn, peer, log)
	case sip.KindResponse:
		d.handleResponse(msg, conn, peer, log)
	}
}

func (d *Dispatcher) handleRequest(msg *sip.Message, conn net.PacketConn, peer *net.UDPAddr, log *slog.Logger) {
	switch msg.Method {
	case sip.REGISTER:
		d.handleRegister(msg, conn, peer, log)
	case sip.INVITE:
		if d.cfg.SIP.Redirect {
			d.handleRedirectInvite(msg, conn, peer, log)
		} else {
			d.handleProxyInvite(msg, conn, peer, log)
		}
	case sip.ACK:
		if d.cfg.SIP.Redirect {
			log.Debug("received ACK in redirect mode, ignoring")
			return
		}
		d.handleProxyAck(msg, conn, peer, log)
	default:
		if sip.IsLocalReply200(msg.Method) {
			d.reply(conn, peer, msg, 200, log)
			return
		}
		if !sip.IsNonInviteProxied(msg.Method) {
			log.Error("unhandled request method reached dispatcher", "method", msg.Method)
			return
		}
		if d.cfg.SIP.Redirect {
			log.Debug("non-INVITE received in redirect mode")
			d.reply(conn, peer, msg, 405, log)
			return
		}
		d.handleProxyNonInvite(msg, conn, peer, log)
	}
}

// handleRegister implements the registrar's REGISTER state machine:
// challenge, verify, bind or unbind.
func (d *Dispatcher) handleRegister(msg *sip.Message, conn net.PacketConn, peer *net.UDPAddr, log *slog.Logger) {
	aor, _ := msg.ToAoR()
	contact, _ := msg.ContactAoR()

	lines := msg.Lines
	idx, params, hasAuth := msg.AuthorizationIndex()
	if hasAuth {
		lines = append(append([]string{}, lines[:idx:idx]...), lines[idx+1:]...)
	}
	reply := &sip.Message{Lines: lines, Kind: sip.KindRequest, Method: sip.REGISTER, URI: msg.URI}

	issuedNonce, known := d.nonces.Get(aor)
	if !hasAuth || !known {
		nonce := d.nonces.Issue(aor)
		reply.Lines = sip.InsertAt(reply.Lines, 6, digest.Challenge(nonce))
		metrics.SIPRegisterOutcomes.WithLabelValues("challenged").Inc()
		d.reply(conn, peer, reply, 401, log)
		return
	}
	if !digest.Verify(params, d.cfg.SIP.Password, issuedNonce, string(sip.REGISTER)) {
		metrics.SIPRegisterOutcomes.WithLabelValues("forbidden").Inc()
		d.reply(conn, peer, reply, 403, log)
		return
	}

	var expires int
	var expiresSet bool
	if ce, ok := msg.ContactExpires(); ok {
		expires, expiresSet = ce, true
	} else if he, ok := msg.ExpiresHeader(); ok {
		expires, expiresSet = he, true
	}

	if expiresSet && expires == 0 {
		d.store.Remove(aor)
		metrics.SIPRegisterOutcomes.WithLabelValues("unbound").Inc()
		d.reply(conn, peer, reply, 200, log)
		return
	}

	if !expiresSet {
		expires = d.cfg.SIP.DefaultExpires
		reply.Lines = sip.InsertAt(reply.Lines, 6, fmt.Sprintf("Expires: %d", expires))
	}

	d.store.Upsert(aor, contact, conn, peer, time.Now().Add(time.Duration(expires)*time.Second))
	metrics.SIPRegisterOutcomes.WithLabelValues("bound").Inc()
	log.Info("registration bound", "aor", aor, "contact", contact, "expires", expires)
	d.reply(conn, peer, reply, 200, log)
}

func (d *Dispatcher) handleProxyInvite(msg *sip.Message, conn net.PacketConn, peer *net.UDPAddr, log *slog.Logger) {
	origin, ok := msg.FromAoR()
	if !ok || !d.isRegistered(origin) {
		d.reply(conn, peer, msg, 400, log)
		return
	}
	dest, ok := msg.DestinationAoR(true)
	if !ok || dest == "" {
		d.reply(conn, peer, msg, 500, log)
		return
	}
	rec, ok := d.store.Lookup(dest)
	if !ok {
		d.reply(conn, peer, msg, 480, log)
		return
	}
	lines := sip.RewriteRequestURI(msg.Lines, rec.Contact)
	lines = d.rewriteAndInsertRR(lines, peer)
	d.forward(lines, rec, log)
}

func (d *Dispatcher) handleProxyNonInvite(msg *sip.Message, conn net.PacketConn, peer *net.UDPAddr, log *slog.Logger) {
	origin, ok := msg.FromAoR()
	if !ok || !d.isRegistered(origin) {
		d.reply(conn, peer, msg, 400, log)
		return
	}
	dest, ok := msg.DestinationAoR(true)
	if !ok || dest == "" {
		d.reply(conn, peer, msg, 500, log)
		return
	}
	rec, ok := d.store.Lookup(dest)
	if !ok {
		d.reply(conn, peer, msg, 404, log)
		return
	}
	lines := sip.RewriteRequestURI(msg.Lines, rec.Contact)
	lines = d.rewriteAndInsertRR(lines, peer)
	d.forward(lines, rec, log)
}

func (d *Dispatcher) handleProxyAck(msg *sip.Message, conn net.PacketConn, peer *net.UDPAddr, log *slog.Logger) {
	dest, ok := msg.DestinationAoR(true)
	if !ok || dest == "" {
		return
	}
	rec, ok := d.store.Lookup(dest)
	if !ok {
		return
	}
	lines := d.rewriteAndInsertRR(msg.Lines, peer)
	d.forward(lines, rec, log)
}

func (d *Dispatcher) handleRedirectInvite(msg *sip.Message, conn net.PacketConn, peer *net.UDPAddr, log *slog.Logger) {
	origin, ok := msg.FromAoR()
	if !ok || !d.isRegistered(origin) {
		d.reply(conn, peer, msg, 400, log)
		return
	}
	dest, ok := msg.DestinationAoR(true)
	if !ok || dest == "" {
		d.reply(conn, peer, msg, 404, log)
		return
	}
	rec, ok := d.store.Lookup(dest)
	if !ok {
		d.reply(conn, peer, msg, 404, log)
		return
	}

	lines := msg.Lines
	lines = sip.RemoveHeader(lines, sip.IsContact)
	lines = sip.RemoveHeader(lines, sip.IsContentType)
	lines = sip.RemoveHeader(lines, sip.IsUserAgent)
	lines = sip.RemoveHeader(lines, sip.IsSessionExpires)
	lines = sip.RemoveHeader(lines, sip.IsSupported)
	lines = sip.RemoveHeader(lines, sip.IsContentDisposition)
	lines = sip.RemoveHeader(lines, sip.IsMaxForward)
	lines = sip.RemoveHeader(lines, sip.IsRoute)
	lines = sip.InsertAt(lines, 1, fmt.Sprintf("Contact: <sip:%s>", rec.Contact))

	redirected := &sip.Message{Lines: lines, Kind: sip.KindRequest, Method: msg.Method, URI: msg.URI}
	d.reply(conn, peer, redirected, 302, log)
}

// handleResponse relays an upstream response back toward its
// registered originator. It only applies in proxy mode: a redirect
// server never forwards a dialog past itself, so there is no upstream
// leg to relay a response from.
func (d *Dispatcher) handleResponse(msg *sip.Message, conn net.PacketConn, peer *net.UDPAddr, log *slog.Logger) {
	if d.cfg.SIP.Redirect {
		log.Debug("received response while in redirect mode, ignoring")
		return
	}
	origin, ok := msg.FromAoR()
	if !ok || origin == "" {
		return
	}
	rec, ok := d.store.Lookup(origin)
	if !ok {
		return
	}
	lines := sip.RemoveHeader(msg.Lines, sip.IsRoute)
	lines = sip.RemoveTopVia(lines, d.topVia)
	d.forward(lines, rec, log)
}

// rewriteAndInsertRR applies the Top-Via insertion/annotation, strips
// Route headers, and inserts Record-Route at index 1 unless configured
// off.
func (d *Dispatcher) rewriteAndInsertRR(lines []string, peer *net.UDPAddr) []string {
	lines = sip.AddTopVia(lines, d.topVia, peer.IP.String(), peer.Port)
	lines = sip.RemoveHeader(lines, sip.IsRoute)
	if !d.cfg.SIP.NoRecordRoute {
		lines = sip.InsertAt(lines, 1, d.recordRoute)
	}
	return lines
}

func (d *Dispatcher) isRegistered(aor string) bool {
	_, ok := d.store.Lookup(aor)
	return ok
}

func (d *Dispatcher) reply(conn net.PacketConn, peer *net.UDPAddr, msg *sip.Message, code int, log *slog.Logger) {
	lines := sip.BuildResponse(msg.Lines, sip.StatusLine(code), peer.IP.String(), peer.Port)
	data := []byte(strings.Join(lines, "\r\n"))
	d.transcript.Debug("send to", "peer", peer.String(), "data", string(data))
	if _, err := conn.WriteTo(data, peer); err != nil {
		log.Error("sip local reply failed", "error", err, "code", code)
	}
}

func (d *Dispatcher) forward(lines []string, rec registrar.Record, log *slog.Logger) {
	if rec.Conn == nil || rec.SourceAddr == nil {
		return
	}
	data := []byte(strings.Join(lines, "\r\n"))
	d.transcript.Debug("send to", "peer", rec.SourceAddr.String(), "data", string(data))
	if _, err := rec.Conn.WriteTo(data, rec.SourceAddr); err != nil {
		log.Error("sip forward failed", "error", err)
	}
}
