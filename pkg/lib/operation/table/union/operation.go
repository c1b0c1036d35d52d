// Package union implements the admin operation that merges several tables
// into a new one over their common fields.
package union

import (
	"context"
	"fmt"
	"strings"

	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/telemetry"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
	"github.com/bluecarto/geoloader/internal/pkg/validator"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

type Options struct {
	Tables    []string `validate:"required,min=2,dive,required,table_id"`
	Output    string   `validate:"required,table_id"`
	Overwrite bool
}

type dependencies interface {
	Logger() log.Logger
	Telemetry() telemetry.Telemetry
	Warehouse() warehouse.Warehouse
}

func Run(ctx context.Context, o Options, d dependencies) (err error) {
	ctx, span := d.Telemetry().Tracer().Start(ctx, "geoloader.operation.table.union")
	defer span.End(&err)

	if err := validator.Validate(ctx, o); err != nil {
		return err
	}
	output, err := model.ParseTableID(o.Output)
	if err != nil {
		return err
	}
	tables := make([]model.TableID, 0, len(o.Tables))
	for _, raw := range o.Tables {
		id, err := model.ParseTableID(raw)
		if err != nil {
			return err
		}
		tables = append(tables, id)
	}

	exists, err := d.Warehouse().TableExists(ctx, output)
	if err != nil {
		return err
	}
	if exists {
		if !o.Overwrite {
			return errors.Errorf(`table "%s" already exists`, output)
		}
		if err := d.Warehouse().DeleteTable(ctx, output); err != nil {
			return err
		}
	}

	common, err := commonFields(ctx, d, tables)
	if err != nil {
		return err
	}
	if len(common) == 0 {
		return errors.New("the tables have no fields in common")
	}

	if err := d.Warehouse().Execute(ctx, unionStatement(output, tables, common)); err != nil {
		return err
	}

	d.Logger().Infof(`Created table "%s" as the union of %d tables.`, output, len(tables))
	return nil
}

// commonFields intersects the column names of all tables, the order of the
// first table wins. Types are not compared, the union relies on the tables
// being loaded from compatible sources.
func commonFields(ctx context.Context, d dependencies, tables []model.TableID) ([]string, error) {
	var ordered []string
	var keep map[string]bool
	for i, id := range tables {
		tableSchema, err := d.Warehouse().TableSchema(ctx, id)
		if err != nil {
			return nil, err
		}
		names := tableSchema.ColumnNames()
		if i == 0 {
			ordered = names
			keep = make(map[string]bool, len(names))
			for _, name := range names {
				keep[name] = true
			}
			continue
		}
		present := make(map[string]bool, len(names))
		for _, name := range names {
			present[name] = true
		}
		for name := range keep {
			if !present[name] {
				delete(keep, name)
			}
		}
	}

	out := make([]string, 0, len(keep))
	for _, name := range ordered {
		if keep[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

// unionStatement builds CREATE TABLE ... AS SELECT ... UNION ALL ..., every
// branch gets a generated row id and the name of the table it came from.
func unionStatement(output model.TableID, tables []model.TableID, fields []string) string {
	fieldList := strings.Join(fields, ", ")
	selects := make([]string, 0, len(tables))
	for _, id := range tables {
		selects = append(selects, fmt.Sprintf(
			"SELECT GENERATE_UUID() AS id, %s, '%s' AS source_table FROM `%s`",
			fieldList, id, id,
		))
	}
	return fmt.Sprintf("CREATE TABLE `%s` AS %s", output, strings.Join(selects, " UNION ALL "))
}
