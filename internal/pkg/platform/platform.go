// Package platform waits on the lifecycle signals of managed services the
// loads depend on. A source database and its proxy start on demand, so a load
// against them has to block until the endpoint answers.
package platform

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"

	"github.com/bluecarto/geoloader/internal/pkg/build"
	"github.com/bluecarto/geoloader/internal/pkg/log"
)

const (
	// RequestTimeout bounds a single probe request.
	RequestTimeout = 30 * time.Second
	// ReadyTimeout bounds the whole wait.
	ReadyTimeout = 2 * time.Minute
)

// ReadyTimeoutError is returned when the endpoint did not answer HTTP 200
// within ReadyTimeout.
type ReadyTimeoutError struct {
	URL    string
	Waited time.Duration
}

func (e ReadyTimeoutError) Error() string {
	return fmt.Sprintf(`"%s" did not become ready within %s`, e.URL, e.Waited)
}

// WaitReady polls the url until it answers HTTP 200. Connection refused means
// the service is still starting and keeps the poll going, any other transport
// error ends the wait. A plain 200 is enough, the body is not inspected.
func WaitReady(ctx context.Context, logger log.Logger, clock clockwork.Clock, url string) error {
	client := newHTTPClient(logger)
	retry := newReadyBackoff(clock)
	start := clock.Now()

	logger.Infof(`waiting for "%s" to be ready`, url)
	for {
		resp, err := client.R().SetContext(ctx).Get(url)
		if err != nil && !strings.Contains(err.Error(), "connection refused") {
			return err
		}
		if err == nil && resp.StatusCode() == http.StatusOK {
			logger.Infof(`"%s" is ready`, url)
			return nil
		}
		if err == nil {
			logger.Debugf(`"%s" is not ready yet, status code %d`, url, resp.StatusCode())
		} else {
			logger.Debugf(`"%s" is not ready yet: %s`, url, err)
		}

		if delay := retry.NextBackOff(); delay == backoff.Stop {
			return ReadyTimeoutError{URL: url, Waited: clock.Since(start)}
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

func newHTTPClient(logger log.Logger) *resty.Client {
	c := resty.New()
	c.SetLogger(logger)
	c.SetHeader("User-Agent", fmt.Sprintf("geoloader/%s", build.BuildVersion))
	c.SetTimeout(RequestTimeout)
	return c
}

func newReadyBackoff(clock clockwork.Clock) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.Clock = clock
	b.RandomizationFactor = 0
	b.InitialInterval = 1 * time.Second
	b.Multiplier = 2
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = ReadyTimeout
	b.Reset()
	return b
}
