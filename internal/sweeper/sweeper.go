// Package sweeper implements the retention sweeper: a periodic task that
// purges served bookings once they age past the retention window, along
// with the receipt files rendered for them. The sweep is idempotent, so
// overlapping deployments or manual runs converge to the same row set.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/ruanfs/agenda-posto/internal/receipt"
	"github.com/ruanfs/agenda-posto/internal/repository"
)

// Sweeper deletes served bookings whose date lies more than Retention
// behind the clock. Receipts is optional; when set, receipt files older
// than the retention window are removed in the same pass.
type Sweeper struct {
	Bookings  *repository.BookingRepo
	Receipts  *receipt.Generator
	Interval  time.Duration
	Retention time.Duration

	// Now is the clock used to compute the cutoff; injectable so the
	// retention boundary can be tested deterministically.
	Now func() time.Time
}

// New returns a Sweeper with the real clock.
func New(bookings *repository.BookingRepo, receipts *receipt.Generator, interval, retention time.Duration) *Sweeper {
	return &Sweeper{
		Bookings:  bookings,
		Receipts:  receipts,
		Interval:  interval,
		Retention: retention,
		Now:       time.Now,
	}
}

// Run sweeps once immediately and then on every tick until the context is
// cancelled. Sweep failures are logged and the next tick retries; the
// loop itself never stops on error.
func (s *Sweeper) Run(ctx context.Context) {
	s.Sweep(ctx)
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			log.Printf("sweeper: shutting down")
			return
		}
	}
}

// Sweep performs one purge pass. Bookings dated strictly before
// now - Retention and already served are deleted; pending bookings are
// kept whatever their age, since an unserved citizen is an open case, not
// stale data.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := s.Now().UTC().Add(-s.Retention)
	removed, err := s.Bookings.DeleteServedBefore(ctx, cutoff.Format("2006-01-02"))
	if err != nil {
		log.Printf("sweeper: purge bookings failed: %v", err)
	} else if removed > 0 {
		log.Printf("sweeper: purged %d served bookings older than %s", removed, cutoff.Format("2006-01-02"))
	}
	if s.Receipts != nil {
		if n, err := s.Receipts.RemoveOlderThan(cutoff); err != nil {
			log.Printf("sweeper: purge receipts failed: %v", err)
		} else if n > 0 {
			log.Printf("sweeper: removed %d old receipt files", n)
		}
	}
}
