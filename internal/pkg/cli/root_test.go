package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bluecarto/geoloader/internal/pkg/cli/options"
	"github.com/bluecarto/geoloader/internal/pkg/env"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse/warehousetest"
)

// testConsole runs the whole binary against a fake warehouse.
type testConsole struct {
	root   *RootCommand
	fake   *warehousetest.Fake
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestRoot(t *testing.T, osEnvs *env.Map) *testConsole {
	t.Helper()

	fake := warehousetest.New()
	factory := func(ctx context.Context, logger log.Logger, o *options.Options) (warehouse.Warehouse, error) {
		return fake, nil
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root := NewRootCommand(strings.NewReader(""), stdout, stderr, osEnvs, factory)
	return &testConsole{root: root, fake: fake, stdout: stdout, stderr: stderr}
}

// execute runs the command in an empty working directory,
// the log file is written to a test directory.
func (c *testConsole) execute(t *testing.T, args ...string) int {
	t.Helper()
	args = append(args, `-d`, t.TempDir(), `-l`, filepath.Join(t.TempDir(), "log.txt"))
	c.root.SetArgs(args)
	return c.root.Execute()
}

func TestExecuteHelp(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	exitCode := c.execute(t, `--help`)
	assert.Equal(t, 0, exitCode, c.stderr.String())

	out := c.stdout.String()
	assert.Contains(t, out, "Load geospatial and relational datasets")
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "load file")
	assert.Contains(t, out, "table union")
	assert.Contains(t, out, "ledger init")
	assert.Contains(t, out, "Command Aliases:")
	assert.Contains(t, out, "lf")
}

func TestExecuteVersion(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	exitCode := c.execute(t, `--version`)
	assert.Equal(t, 0, exitCode, c.stderr.String())
	assert.Contains(t, c.stdout.String(), "Version:")
	assert.Contains(t, c.stdout.String(), "Git commit:")
}

func TestExecuteUnknownCommand(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	exitCode := c.execute(t, `unload`)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, c.stderr.String(), `command "unload"`)
}

func TestExecuteMissingProject(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	exitCode := c.execute(t, `ledger`, `init`)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, c.stderr.String(), `"--project" flag`)
	assert.Contains(t, c.stderr.String(), `GEOLOADER_PROJECT`)
}

func TestExecuteMissingLedgerDataset(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	exitCode := c.execute(t, `ledger`, `init`, `--project`, `restor-gis`)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, c.stderr.String(), `"--ledger-dataset" flag`)
	assert.Contains(t, c.stderr.String(), `GEOLOADER_LEDGER_DATASET`)
}

func TestExecuteProcessesPanic(t *testing.T) {
	t.Parallel()

	factory := func(ctx context.Context, logger log.Logger, o *options.Options) (warehouse.Warehouse, error) {
		panic("warehouse exploded")
	}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root := NewRootCommand(strings.NewReader(""), stdout, stderr, env.Empty(), factory)
	root.SetArgs([]string{
		`ledger`, `init`, `--project`, `proj`, `--ledger-dataset`, `meta`,
		`-d`, t.TempDir(), `-l`, filepath.Join(t.TempDir(), "log.txt"),
	})

	exitCode := root.Execute()
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stdout.String(), "Geoloader had a problem and crashed.")
}

func TestCommandsByPath(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	for _, path := range []string{
		`status`,
		`load file`,
		`load db`,
		`table union`,
		`table repair`,
		`table add-columns`,
		`ledger init`,
	} {
		assert.NotNil(t, c.root.cmdByPath[path], path)
	}
}

func TestCommandAliases(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	// The alias routes to "load file" and inherits its argument check
	exitCode := c.execute(t, `lf`)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, c.stderr.String(), "2 arg(s), received 0")
}
