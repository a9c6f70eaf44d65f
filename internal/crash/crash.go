// Package crash reports recovered panics to Sentry when a DSN is configured.
package crash

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"coinflip3d/internal/logger"
)

const flushTimeout = 5 * time.Second

// Init configures the global Sentry client. An empty dsn leaves reporting
// off; Report then only logs.
func Init(dsn, release string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	})
}

// Report logs a recovered panic value and forwards it to Sentry with tags.
func Report(r any, tags map[string]string) {
	logger.Error("panic recovered", "panic", fmt.Sprint(r), "tags", tags)

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
	})
	hub.Recover(r)
	hub.Flush(flushTimeout)
}

func Flush() {
	sentry.Flush(flushTimeout)
}
