package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/bluecarto/geoloader/internal/pkg/cli/options"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
	loadDatabase "github.com/bluecarto/geoloader/pkg/lib/operation/load/database"
)

const loadDatabaseShortDescription = `Load a Postgres table into a table`

const loadDatabaseLongDescription = `Command "load db"

Load one Postgres table into a warehouse table.

Rows are streamed in chunks. Geometries travel as hex
encoded WKB in the "original_geometry" column and are
repaired into the "geometry" column after the load.

The connection is built from the "--db-*" flags, the
password is usually set with the GEOLOADER_DB_PASSWORD
ENV variable. With "--ready-url" the command first waits
for the database platform to be ready.
`

var (
	ErrMissingDatabaseUser = errors.New("missing database user")
	ErrMissingDatabaseName = errors.New("missing database name")
)

func loadDatabaseCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `db <source-table> <table>`,
		Short: loadDatabaseShortDescription,
		Long:  loadDatabaseLongDescription,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := model.ParseTableID(args[1])
			if err != nil {
				return err
			}

			dsn, err := databaseDSN(root.options)
			if err != nil {
				return err
			}

			d, err := root.WarehouseDeps(cmd.Context(), table)
			if err != nil {
				return err
			}
			defer root.closeWarehouse(d)

			result, err := loadDatabase.Run(cmd.Context(), loadDatabase.Options{
				DSN:         dsn,
				SourceTable: args[0],
				Table:       args[1],
				StartAt:     root.options.GetInt(`start-at`),
				ChunkSize:   root.options.GetInt(`chunk-size`),
				ReadyURL:    root.options.GetString(`ready-url`),
			}, d)
			if err != nil {
				return err
			}

			root.logger.Infof(`Inserted %d of %d features.`, result.InsertedFeatures, result.InputFeatureCount)
			return nil
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String(`db-host`, `localhost`, `host of the source database`)
	cmd.Flags().Int(`db-port`, 5432, `port of the source database`)
	cmd.Flags().String(`db-user`, ``, `user of the source database`)
	cmd.Flags().String(`db-password`, ``, `password of the source database, prefer the ENV variable`)
	cmd.Flags().String(`db-name`, ``, `name of the source database`)
	cmd.Flags().String(`ready-url`, ``, `wait for this URL to return HTTP 200 before connecting`)
	cmd.Flags().Int(`start-at`, 0, `resume an interrupted load from this row index`)
	cmd.Flags().Int(`chunk-size`, 0, `rows per streaming chunk`)
	return cmd
}

// databaseDSN builds the connection string from the "db-*" options.
func databaseDSN(o *options.Options) (string, error) {
	user := o.GetString(`db-user`)
	if user == "" {
		return "", ErrMissingDatabaseUser
	}
	name := o.GetString(`db-name`)
	if name == "" {
		return "", ErrMissingDatabaseName
	}

	userInfo := url.User(user)
	if password := o.GetString(`db-password`); password != "" {
		userInfo = url.UserPassword(user, password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", o.GetString(`db-host`), o.GetInt(`db-port`)),
		Path:   name,
	}
	return u.String(), nil
}
