package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deps "github.com/bluecarto/geoloader/internal/pkg/dependencies"
)

func TestRunInvalidOptions(t *testing.T) {
	t.Parallel()
	d := deps.NewMockedDeps()

	_, err := Run(context.Background(), Options{}, d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestRunInvalidReadyURL(t *testing.T) {
	t.Parallel()
	d := deps.NewMockedDeps()

	_, err := Run(context.Background(), Options{
		DSN:         "postgres://reader@db.local:5432/wild",
		SourceTable: "plants",
		Table:       "proj.wild.plants",
		ReadyURL:    "not-a-url",
	}, d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL")
}

func TestRunConnectError(t *testing.T) {
	t.Parallel()
	d := deps.NewMockedDeps()

	_, err := Run(context.Background(), Options{
		DSN:         "://bad",
		SourceTable: "plants",
		Table:       "proj.wild.plants",
	}, d)
	require.ErrorContains(t, err, "cannot connect to the database")
}

func TestRunWaitsForReadySignal(t *testing.T) {
	t.Parallel()
	d := deps.NewMockedDeps()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// The probe must pass before the connect attempt fails.
	_, err := Run(context.Background(), Options{
		DSN:         "://bad",
		SourceTable: "plants",
		Table:       "proj.wild.plants",
		ReadyURL:    server.URL,
	}, d)
	require.ErrorContains(t, err, "cannot connect to the database")
	assert.Contains(t, d.DebugLogger().InfoMessages(), `"`+server.URL+`" is ready`)
}
