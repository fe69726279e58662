// Package metrics exposes the appliance's counters over HTTP, mirroring
// the debug HTTP server cmd/proxysip/main.go starts alongside the SIP
// listener (promhttp + statsviz + a liveness endpoint).
package metrics

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/arl/statsviz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors are the counters this appliance increments from the SIP
// and DHCP workers.
var (
	SIPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitgo_sip_requests_total",
		Help: "SIP requests processed, by method.",
	}, []string{"method"})

	SIPRegisterOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitgo_sip_register_outcomes_total",
		Help: "REGISTER outcomes, by result.",
	}, []string{"result"}) // challenged, forbidden, bound, unbound

	DHCPLeasesGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitgo_dhcp_leases_granted_total",
		Help: "DHCP leases granted (OFFER or ACK with a fresh allocation).",
	})

	DHCPPoolExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitgo_dhcp_pool_exhausted_total",
		Help: "DHCPDISCOVER/REQUEST messages dropped because the address pool was exhausted.",
	})
)

// Serve starts the debug HTTP server in its own goroutine, exactly as
// cmd/proxysip/main.go's httpServer helper does. It never returns an
// error to the caller: a metrics endpoint failing to bind must not take
// down the SIP/DHCP services it describes.
func Serve(addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Alive"))
	})
	mux.HandleFunc("/goroutines", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%d\n", runtime.NumGoroutine())
	})
	if err := statsviz.Register(mux); err != nil {
		log.Warn("statsviz registration failed", "error", err)
	}

	go func() {
		log.Info("debug/metrics http server started", "address", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("debug/metrics http server stopped", "error", err)
		}
	}()
}
