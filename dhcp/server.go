package dhcp

import (
	"context"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"github.com/svenno/splitgo/internal/config"
	"github.com/svenno/splitgo/internal/metrics"
)

// Server is the DHCP UDP worker: bind to 0.0.0.0:67 with SO_BROADCAST,
// classify DISCOVER/REQUEST datagrams, allocate or renew a lease, and
// broadcast the OFFER/ACK to port 68.
type Server struct {
	cfg   *config.Config
	store *Store
	log   *slog.Logger
}

// New builds a Server around store, which the caller has already
// Load()ed.
func New(cfg *config.Config, store *Store, log *slog.Logger) *Server {
	return &Server{cfg: cfg, store: store, log: log.With("caller", "dhcp<UDP>")}
}

// udpWriter is the slice of *net.UDPConn this package actually uses,
// kept as an interface so tests can substitute a recording fake
// instead of binding the (often privileged) real broadcast port.
type udpWriter interface {
	WriteToUDP([]byte, *net.UDPAddr) (int, error)
}

// Run binds the DHCP UDP socket and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := &net.UDPAddr{IP: net.ParseIP(s.cfg.DHCP.BindIP), Port: s.cfg.DHCP.Port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := setBroadcast(conn); err != nil {
		s.log.Warn("could not enable SO_BROADCAST", "error", err)
	}

	s.log.Info("dhcp worker listening", "address", addr.String())
	if s.cfg.DHCP.Router == "" {
		s.log.Warn("dhcp router undefined: option 3 will not be sent")
	}
	if s.cfg.DHCP.DNSServer == "" {
		s.log.Warn("dhcp dns server undefined: option 6 will not be sent")
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])
		s.handle(raw, conn)
	}
}

func (s *Server) handle(raw []byte, conn udpWriter) {
	log := s.log.With("trace_id", uuid.NewString())

	req, err := ParseRequest(raw)
	if err != nil {
		log.Debug("discarding malformed dhcp datagram", "error", err)
		return
	}

	switch req.messageType() {
	case TypeDiscover:
		s.respond(req, TypeOffer, conn, log)
	case TypeRequest:
		s.respond(req, TypeAck, conn, log)
	default:
		// anything else (including our own OFFER/ACK replies, which
		// never reach this socket) is ignored.
	}
}

func (s *Server) respond(req Request, msgType byte, conn udpWriter, log *slog.Logger) {
	mac := net.HardwareAddr(req.ClientMAC[:])

	var offered net.IP
	if lease, ok := s.store.Lookup(mac); ok && lease.IP != nil {
		offered = lease.IP
		if msgType == TypeAck {
			// An ACK renews the lease on file for another LeaseDuration.
			if err := s.store.Grant(mac, offered); err != nil {
				log.Error("failed to persist lease", "error", err)
			}
		}
		log.Info("dhcp assignment from lease file", "mac", mac, "ip", offered)
	} else {
		from := net.ParseIP(s.cfg.DHCP.OfferFrom)
		to := net.ParseIP(s.cfg.DHCP.OfferTo)
		ip, ok := s.store.NextIP(from, to)
		if !ok {
			metrics.DHCPPoolExhausted.Inc()
			log.Error("dhcp pool exhausted", "mac", mac)
			return
		}
		if err := s.store.Grant(mac, ip); err != nil {
			log.Error("failed to persist lease", "error", err)
			return
		}
		offered = ip
		metrics.DHCPLeasesGranted.Inc()
		log.Info("new dhcp assignment", "mac", mac, "ip", offered)
	}

	params := ReplyParams{
		FileServer: s.cfg.DHCP.FileServer,
		FileName:   s.cfg.DHCP.FileName,
	}
	copy(params.ServerIP[:], net.ParseIP(s.cfg.BindIP).To4())
	copy(params.OfferedIP[:], offered.To4())
	copy(params.SubnetMask[:], net.ParseIP(s.cfg.DHCP.SubnetMask).To4())
	if s.cfg.DHCP.Router != "" {
		copy(params.Router[:], net.ParseIP(s.cfg.DHCP.Router).To4())
	}
	if s.cfg.DHCP.DNSServer != "" {
		copy(params.DNSServer[:], net.ParseIP(s.cfg.DHCP.DNSServer).To4())
	}

	reply := BuildReply(req, msgType, params)
	dst := &net.UDPAddr{IP: net.ParseIP(s.cfg.DHCP.Broadcast), Port: 68}
	label := "DHCPOFFER"
	if msgType == TypeAck {
		label = "DHCPACK"
	}
	log.Debug(label+" sending", "mac", mac, "ip", offered)
	if _, err := conn.WriteToUDP(reply, dst); err != nil {
		log.Error("dhcp send failed", "error", err)
	}
}
