// Package supervisor starts and stops the appliance's per-service UDP
// workers (SIP, DHCP), mirroring cmd/proxysip/main.go's top-level
// server construction but generalized from one listener to a fixed set
// of independently enabled services.
package supervisor

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Worker is anything the supervisor can run to completion or
// cancellation; both sipproxy.Server and dhcp.Server satisfy it.
type Worker interface {
	Run(ctx context.Context) error
}

// Supervisor launches one long-lived goroutine per registered service
// worker and waits for all of them to return.
type Supervisor struct {
	log     *slog.Logger
	workers []namedWorker
}

type namedWorker struct {
	name   string
	worker Worker
}

// New returns an empty Supervisor.
func New(log *slog.Logger) *Supervisor {
	return &Supervisor{log: log}
}

// Register adds a named worker. Call before Run.
func (s *Supervisor) Register(name string, w Worker) {
	s.workers = append(s.workers, namedWorker{name: name, worker: w})
}

// Run starts every registered worker, one goroutine each, and blocks
// until ctx is cancelled (normal shutdown) or any worker returns a
// non-cancellation error, in which case the remaining workers are
// cancelled too.
func (s *Supervisor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, nw := range s.workers {
		nw := nw
		g.Go(func() error {
			s.log.Info("worker starting", "service", nw.name)
			err := nw.worker.Run(ctx)
			if ctx.Err() != nil {
				s.log.Info("worker stopped", "service", nw.name)
				return nil
			}
			s.log.Error("worker exited with error", "service", nw.name, "error", err)
			return err
		})
	}
	return g.Wait()
}
