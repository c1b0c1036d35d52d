package warehouse

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"

	"github.com/bluecarto/geoloader/internal/pkg/model"
)

// VisibilityTimeout bounds how long WaitForTable polls for a new table.
const VisibilityTimeout = 2 * time.Minute

// WaitForTable polls until the table is visible. A freshly created table can
// take a while to show up in metadata reads, so callers create first and
// wait here before writing. On timeout it returns TableVisibilityTimeoutError,
// an existence check error ends the wait immediately.
func WaitForTable(ctx context.Context, clock clockwork.Clock, w Warehouse, id model.TableID) error {
	retry := newVisibilityBackoff(clock)
	start := clock.Now()
	for {
		found, err := w.TableExists(ctx, id)
		if err != nil {
			return err
		}
		if found {
			return nil
		}

		if delay := retry.NextBackOff(); delay == backoff.Stop {
			return TableVisibilityTimeoutError{Table: id, Waited: clock.Since(start)}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(delay):
				// try again
			}
		}
	}
}

func newVisibilityBackoff(clock clockwork.Clock) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.Clock = clock
	b.RandomizationFactor = 0
	b.InitialInterval = 1 * time.Second
	b.Multiplier = 2
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = VisibilityTimeout
	b.Reset()
	return b
}
