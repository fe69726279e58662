package sipproxy

import (
	"context"
	"log/slog"
	"net"

	"github.com/svenno/splitgo/internal/config"
)

// Server is the single UDP worker that owns the SIP listening socket.
// Datagrams are read and dispatched sequentially, one at a time: the
// dispatcher's per-message work is short and non-blocking apart from
// the reply/forward sendto, so no per-message fan-out is needed.
type Server struct {
	cfg        *config.Config
	dispatcher *Dispatcher
	log        *slog.Logger
}

// New builds a Server around an already-constructed Dispatcher,
// separating transport construction from protocol-handler
// construction.
func New(cfg *config.Config, d *Dispatcher, log *slog.Logger) *Server {
	return &Server{cfg: cfg, dispatcher: d, log: log.With("caller", "sipproxy<UDP>")}
}

// Run binds the SIP UDP socket and serves until ctx is cancelled. It
// never returns a nil error: the caller distinguishes a clean shutdown
// (ctx.Err()) from a bind/read failure.
func (s *Server) Run(ctx context.Context) error {
	addr := &net.UDPAddr{IP: net.ParseIP(s.cfg.SIP.BindIP), Port: s.cfg.SIP.Port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.log.Info("sip worker listening", "address", addr.String())

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 65535)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])
		s.dispatcher.Handle(raw, conn, peer)
	}
}
