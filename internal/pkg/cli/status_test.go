package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bluecarto/geoloader/internal/pkg/env"
)

func TestStatusCommand(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	exitCode := c.execute(t, `status`)
	assert.Equal(t, 0, exitCode, c.stderr.String())
	assert.Contains(t, c.stdout.String(), "Parsed options:")
	assert.Contains(t, c.stdout.String(), `Set the "--project" and "--ledger-dataset" flags to inspect the job ledger.`)
}

func TestStatusCommandWithLedger(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	exitCode := c.execute(t, `status`, `--project`, `proj`, `--ledger-dataset`, `meta`)
	assert.Equal(t, 0, exitCode, c.stderr.String())
	assert.Contains(t, c.stdout.String(), `ledger-dataset = "meta"`)
	assert.Contains(t, c.stdout.String(), `Ledger table "meta.load_jobs" is not created yet.`)
	assert.Contains(t, c.stdout.String(), `Ledger table "meta.load_failures" is not created yet.`)
}
