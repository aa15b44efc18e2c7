package utils

import "time"

// StartSnapshotRefresher launches a background goroutine that periodically
// invokes refresh for the current day. Best-effort: failures are logged and
// the next tick retries. The refresh callback must be idempotent, which the
// snapshot recompute guarantees by overwriting per date key.
func StartSnapshotRefresher(interval time.Duration, refresh func(time.Time) error) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			if err := refresh(time.Now()); err != nil {
				if Sugar != nil {
					Sugar.Warnf("snapshot refresh failed: %v", err)
				}
			}
		}
	}()
}
