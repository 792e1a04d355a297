package jobs

import (
	"context"
	"log"
	"time"

	"sportsfed/federation/internal/config"
	"sportsfed/federation/internal/ledger"
)

// StartPassExpiryJob periodically expires duration-based passes whose end date
// has passed. Failures are logged and the next tick retries; the sweep is a
// display optimization, not an accounting requirement.
func StartPassExpiryJob(ctx context.Context, cfg config.Config, ledgerSvc *ledger.Ledger) {
	if !cfg.PassExpiryJobEnabled {
		return
	}
	interval := cfg.PassExpiryJobInterval
	if interval <= 0 {
		interval = time.Hour
	}
	timeout := cfg.PassExpiryJobTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, timeout)
				count, err := ledgerSvc.SweepExpiredDurationPasses(tickCtx)
				cancel()
				if err != nil {
					log.Printf("pass expiry job error: %v", err)
					continue
				}
				if count > 0 {
					log.Printf("pass expiry job expired %d passes", count)
				}
			}
		}
	}()
}
