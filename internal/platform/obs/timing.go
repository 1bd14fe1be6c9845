// Package obs holds the observability helpers: operation timing logs and the
// Prometheus registry the HTTP layer scrapes.
package obs

import (
	"context"
	"log"
	"time"
)

// Time logs an operation's duration when the returned func runs, typically
// deferred with a pointer to the surrounding function's named error:
//
//	defer obs.Time(ctx, "optimizer.Optimize")(&err)
//
// Durations cover the full call including provider round trips, so slow
// matrix builds show up here before they show up in the histogram.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("op=%s dur=%dms err=%v", name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("op=%s dur=%dms", name, dur.Milliseconds())
	}
}
