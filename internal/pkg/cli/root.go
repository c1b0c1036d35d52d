package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cobra"

	"github.com/bluecarto/geoloader/internal/pkg/cli/options"
	"github.com/bluecarto/geoloader/internal/pkg/dependencies"
	"github.com/bluecarto/geoloader/internal/pkg/env"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/telemetry"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
	"github.com/bluecarto/geoloader/internal/pkg/version"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse/bigquery"
)

const description = `
Geoloader

Load geospatial and relational datasets
into Google BigQuery.

Tables are created from the source schema, features are
loaded in quota-sized jobs, and every job is recorded in
the job ledger, so an interrupted load can be resumed.

Start with the "load file" sub-command.
`

const usageTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:
{{cmds .}}{{end}}{{if .Annotations.aliases}}

Command Aliases:
{{.Annotations.aliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

// Configuration errors are enriched with the flag and ENV variable names,
// see printError.
var (
	ErrMissingProject       = errors.New("missing warehouse project")
	ErrMissingLedgerDataset = errors.New("missing ledger dataset")
)

//nolint:gochecknoinits
func init() {
	// Disable commands auto-sorting
	cobra.EnableCommandSorting = false

	// List sub-commands with their full path, for example "load file"
	cobra.AddTemplateFunc(`cmds`, func(root *cobra.Command) string {
		var out strings.Builder

		var maxCmdPathLength int
		visitSubCommands(root, func(cmd *cobra.Command) bool {
			cmdPath := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Use+` `)
			if len(cmdPath) > maxCmdPathLength {
				maxCmdPathLength = len(cmdPath)
			}
			return true
		})

		tmpl := fmt.Sprintf("  %%-%ds  %%s", maxCmdPathLength)

		visitSubCommands(root, func(cmd *cobra.Command) bool {
			if !cmd.IsAvailableCommand() && cmd.Name() != `help` {
				return false
			}

			// Separate context by new line
			level := cmdLevel(cmd) - cmdLevel(root)
			if level == 1 && !root.HasParent() {
				out.WriteString("\n")
			}

			// Indent and pad right
			cmdPath := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Use+` `)
			out.WriteString(strings.TrimRight(fmt.Sprintf(tmpl, cmdPath, cmd.Short), " "))
			out.WriteString("\n")
			return true
		})
		return strings.Trim(out.String(), "\n")
	})
}

// WarehouseFactory opens the warehouse client for a command, tests inject a
// factory that returns a fake.
type WarehouseFactory func(ctx context.Context, logger log.Logger, o *options.Options) (warehouse.Warehouse, error)

// DefaultWarehouseFactory connects to BigQuery using the parsed options.
func DefaultWarehouseFactory() WarehouseFactory {
	return func(ctx context.Context, logger log.Logger, o *options.Options) (warehouse.Warehouse, error) {
		return bigquery.NewWarehouse(ctx, logger, bigquery.Config{
			ProjectID:       o.GetString(`project`),
			Location:        o.GetString(`location`),
			CredentialsFile: o.GetString(`credentials-file`),
		})
	}
}

type Cmd = cobra.Command

type RootCommand struct {
	*Cmd
	logger       log.Logger
	osEnvs       *env.Map
	options      *options.Options
	clock        clockwork.Clock
	telemetry    telemetry.Telemetry
	newWarehouse WarehouseFactory
	deps         dependencies.Base
	logFile      *log.File
	cmdByPath    map[string]*cobra.Command
	aliases      *orderedmap.OrderedMap
}

// NewRootCommand creates parent of all sub-commands.
func NewRootCommand(stdin io.Reader, stdout io.Writer, stderr io.Writer, osEnvs *env.Map, newWarehouse WarehouseFactory) *RootCommand {
	root := &RootCommand{
		logger:       log.NewMemoryLogger(), // temporary logger, we don't have a path to the log file yet
		osEnvs:       osEnvs,
		options:      options.NewOptions(),
		clock:        clockwork.NewRealClock(),
		telemetry:    telemetry.NewNop(),
		newWarehouse: newWarehouse,
		cmdByPath:    make(map[string]*cobra.Command),
		aliases:      orderedmap.New(),
	}
	root.Cmd = &Cmd{
		Use:               "geoloader", // name of the binary
		Version:           version.Version(),
		Short:             description,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
		SilenceErrors:     true, // custom error handling, see printError
		RunE: func(cmd *cobra.Command, args []string) error {
			// Print help if no command specified
			return root.Help()
		},
	}

	// Setup in/out
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	// Setup templates
	root.SetVersionTemplate("{{.Version}}")
	root.SetUsageTemplate(usageTemplate)

	// Persistent flags for all sub-commands
	flags := root.PersistentFlags()
	flags.SortFlags = true
	flags.BoolP("help", "h", false, "print help for command")
	flags.StringP("log-file", "l", "", "path to a log file for details")
	flags.StringP("working-dir", "d", "", "use other working directory")
	flags.BoolP("verbose", "v", false, "print details")
	flags.String("project", "", "warehouse project ID")
	flags.String("location", "", "location for new datasets, for example EU")
	flags.String("credentials-file", "", "path to the warehouse credentials JSON file")
	flags.String("ledger-dataset", "", "dataset of the job ledger, defaults to the dataset of the target table")

	// Root command flags
	root.Flags().SortFlags = true
	root.Flags().BoolP("version", "V", false, "print version")

	// Init when flags are parsed
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return root.init(cmd)
	}

	// Sub-commands
	root.AddCommand(
		statusCommand(root),
		loadCommand(root),
		tableCommand(root),
		ledgerCommand(root),
	)

	// Get all sub-commands by full path, for example "load file"
	visitSubCommands(root.Cmd, func(cmd *cobra.Command) (goDeep bool) {
		cmdPath := cmd.CommandPath()
		cmdPath = strings.TrimPrefix(cmdPath, root.Use+` `)
		root.cmdByPath[cmdPath] = cmd
		return true
	})

	// Aliases
	root.addAlias(`lf`, `load file`)
	root.addAlias(`ldb`, `load db`)
	root.addAlias(`union`, `table union`)
	root.addAlias(`repair`, `table repair`)

	// Add aliases to usage template
	root.Annotations = map[string]string{`aliases`: root.listAliases()}

	return root
}

// Execute command or sub-command.
func (root *RootCommand) Execute() (exitCode int) {
	defer func() {
		exitCode = root.tearDown(exitCode, recover())
	}()

	if err := root.Cmd.Execute(); err != nil {
		root.printError(err)
		return 1
	}
	return 0
}

// WarehouseDeps connects to the warehouse and builds the dependencies of the
// command. The job ledger lives next to the target table, unless the
// "ledger-dataset" flag points elsewhere.
func (root *RootCommand) WarehouseDeps(ctx context.Context, target model.TableID) (dependencies.ForWarehouseCommand, error) {
	if root.options.GetString(`project`) == "" {
		return nil, ErrMissingProject
	}

	ledgerDataset := root.options.GetString(`ledger-dataset`)
	if ledgerDataset == "" {
		ledgerDataset = target.Dataset
	}
	if ledgerDataset == "" {
		return nil, ErrMissingLedgerDataset
	}

	wh, err := root.newWarehouse(ctx, root.logger, root.options)
	if err != nil {
		return nil, err
	}

	return dependencies.NewWarehouseDeps(root.deps, wh, target.Project, ledgerDataset), nil
}

// closeWarehouse closes the client, a close error only spoils the logs.
func (root *RootCommand) closeWarehouse(d dependencies.ForWarehouseCommand) {
	if err := d.Warehouse().Close(); err != nil {
		root.logger.Warnf(`cannot close warehouse client: %s`, err)
	}
}

func (root *RootCommand) listAliases() string {
	// Join aliases to single line
	lines := make([]string, 0, len(root.aliases.Keys()))
	var maxLength int
	for _, cmd := range root.aliases.Keys() {
		aliasesRaw, _ := root.aliases.Get(cmd)
		aliasesStr := strings.Join(aliasesRaw.([]string), `, `)
		lines = append(lines, aliasesStr)
		length := len(cmd)
		if length > maxLength {
			maxLength = length
		}
	}

	// Format
	var out strings.Builder
	for i, cmd := range root.aliases.Keys() {
		tmpl := fmt.Sprintf("  %%-%ds  %%s\n", maxLength)
		out.WriteString(fmt.Sprintf(tmpl, cmd, lines[i]))
	}
	return strings.TrimRight(out.String(), "\n")
}

func (root *RootCommand) addAlias(alias, cmdPath string) {
	target, found := root.cmdByPath[cmdPath]
	if !found {
		panic(errors.Errorf(`cannot create cmd alias "%s": command "%s" not found`, alias, cmdPath))
	}

	// Add alias
	use := strings.Split(target.Use, ` `)
	use[0] = alias
	aliasCmd := *target
	aliasCmd.Use = strings.Join(use, ` `)
	aliasCmd.Hidden = true
	root.AddCommand(&aliasCmd)

	// Store alias for help print
	var aliases []string
	aliasesRaw, found := root.aliases.Get(cmdPath)
	if found {
		aliases = aliasesRaw.([]string)
	}
	aliases = append(aliases, alias)
	root.aliases.Set(cmdPath, aliases)
}

func (root *RootCommand) printError(errRaw error) {
	// Convert to MultiError
	var originalErrs errors.MultiError
	if v, ok := errRaw.(errors.MultiError); ok { // nolint: errorlint
		originalErrs = v
	} else {
		originalErrs = errors.NewMultiError()
		originalErrs.Append(errRaw)
	}

	// Enrich configuration errors with the flag and ENV variable names
	modifiedErrs := errors.NewMultiError()
	for _, err := range originalErrs.WrappedErrors() {
		switch {
		case errors.Is(err, ErrMissingProject):
			modifiedErrs.Append(errors.Wrapf(err, `missing warehouse project, please use the "--project" flag or the ENV variable "%s"`, env.NewNamingConvention().Replace(`project`)))
		case errors.Is(err, ErrMissingLedgerDataset):
			modifiedErrs.Append(errors.Wrapf(err, `missing ledger dataset, please use the "--ledger-dataset" flag or the ENV variable "%s"`, env.NewNamingConvention().Replace(`ledger-dataset`)))
		case errors.Is(err, ErrMissingDatabaseUser):
			modifiedErrs.Append(errors.Wrapf(err, `missing database user, please use the "--db-user" flag or the ENV variable "%s"`, env.NewNamingConvention().Replace(`db-user`)))
		case errors.Is(err, ErrMissingDatabaseName):
			modifiedErrs.Append(errors.Wrapf(err, `missing database name, please use the "--db-name" flag or the ENV variable "%s"`, env.NewNamingConvention().Replace(`db-name`)))
		default:
			modifiedErrs.Append(err)
		}
	}

	fullErr := errors.PrefixError(modifiedErrs, "Error")
	root.logger.Debugf("Error debug log:\n%s", errors.Format(fullErr, errors.FormatWithStack(), errors.FormatWithUnwrap()))
	root.PrintErrln(errors.Format(fullErr, errors.FormatAsSentences()))
}

// init sets up the logger and the options after the flags are parsed.
func (root *RootCommand) init(cmd *cobra.Command) error {
	// Load values from flags, ENVs and ".env" files
	if err := root.options.Load(root.logger, root.osEnvs, cmd.Flags()); err != nil {
		return err
	}

	// Setup logger
	root.setupLogger()
	root.logger.Debugf(`Working dir: %s`, root.options.WorkingDirectory)

	// Base dependencies for the commands
	root.deps = dependencies.NewBaseDeps(root.logger, root.telemetry, root.clock, root.options.Envs(), root.options, root.OutOrStdout())
	return nil
}

// setupLogger according to the options.
func (root *RootCommand) setupLogger() {
	// Get log file
	var logFileErr error
	root.logFile, logFileErr = log.NewLogFile(root.options.GetString(`log-file`))

	// Get temporary logger
	memoryLogger, _ := root.logger.(*log.MemoryLogger)

	// Create logger
	root.logger = log.NewCliLogger(root.OutOrStdout(), root.ErrOrStderr(), root.logFile, root.options.GetBool(`verbose`))

	// Warn if user specified log file and it cannot be opened
	if logFileErr != nil && root.options.GetString(`log-file`) != "" {
		root.logger.Warnf("Cannot open log file: %s", logFileErr)
	}

	// Log info
	root.logger.Debug(root.Version)
	root.logger.Debugf("Running command %v", os.Args)
	root.logger.Debug(root.options.Dump())
	if root.logFile == nil {
		root.logger.Debug(`Log file: -`)
	} else {
		root.logger.Debug(`Log file: ` + root.logFile.Path())
	}

	// Copy logs from the temporary logger
	if memoryLogger != nil {
		memoryLogger.CopyLogsTo(root.logger)
	}
}

// tearDown does clean-up after command execution.
func (root *RootCommand) tearDown(exitCode int, panicErr any) int {
	// Logger may be uninitialized, if an error occurred before the initialization
	if _, ok := root.logger.(*log.MemoryLogger); ok {
		root.setupLogger()
	}

	if panicErr != nil {
		logFilePath := ""
		if root.logFile != nil {
			logFilePath = root.logFile.Path()
		}

		// Process panic
		exitCode = ProcessPanic(panicErr, root.logger, logFilePath)
	}

	// Close log file
	root.logFile.TearDown(exitCode != 0)
	return exitCode
}

// cmdLevel gets number of command parents.
func cmdLevel(cmd *cobra.Command) int {
	level := 0
	cmd.VisitParents(func(_ *cobra.Command) {
		level++
	})
	return level
}

func visitSubCommands(root *cobra.Command, callback func(cmd *cobra.Command) (goDeep bool)) {
	for _, cmd := range root.Commands() {
		goDeep := callback(cmd)
		if goDeep {
			visitSubCommands(cmd, callback)
		}
	}
}
