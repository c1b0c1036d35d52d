package loader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

const (
	// LoadJobsTable is the name of the job ledger table.
	LoadJobsTable = "load_jobs"
	// LoadFailuresTable is the name of the failure quarantine table.
	LoadFailuresTable = "load_failures"
)

// Ledger records finished jobs and quarantined features in dedicated
// warehouse tables. Writes are best effort, a failed write is logged and
// never changes the outcome of the load itself.
type Ledger struct {
	logger   log.Logger
	wh       warehouse.Warehouse
	jobs     model.TableID
	failures model.TableID
}

// NewLedger creates a ledger over both tables in the given dataset.
// The ledger usually lives in the dataset of the loaded tables.
func NewLedger(logger log.Logger, wh warehouse.Warehouse, project, dataset string) *Ledger {
	return &Ledger{
		logger:   logger,
		wh:       wh,
		jobs:     model.TableID{Project: project, Dataset: dataset, Table: LoadJobsTable},
		failures: model.TableID{Project: project, Dataset: dataset, Table: LoadFailuresTable},
	}
}

func (l *Ledger) JobsTable() model.TableID {
	return l.jobs
}

func (l *Ledger) FailuresTable() model.TableID {
	return l.failures
}

// EnsureTables creates the ledger dataset and both tables when they are missing.
func (l *Ledger) EnsureTables(ctx context.Context) error {
	if err := l.wh.EnsureDataset(ctx, l.jobs.Dataset); err != nil {
		return err
	}
	if err := l.ensureTable(ctx, l.jobs, JobsSchema()); err != nil {
		return err
	}
	return l.ensureTable(ctx, l.failures, FailuresSchema())
}

func (l *Ledger) ensureTable(ctx context.Context, id model.TableID, schema model.TableSchema) error {
	exists, err := l.wh.TableExists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	l.logger.Infof(`creating ledger table "%s"`, id)
	return l.wh.CreateTable(ctx, id, schema)
}

// RecordJob appends one row describing a finished job.
func (l *Ledger) RecordJob(ctx context.Context, job model.LoadJob) {
	l.write(ctx, l.jobs, warehouse.Row{
		"source_path":           job.SourcePath,
		"layer_name":            job.LayerName,
		"table_id":              job.TableID.String(),
		"input_feature_count":   job.InputFeatureCount,
		"job_size":              job.JobSize,
		"job_count":             job.JobCount,
		"start_at":              job.StartAt,
		"validate_feature":      job.ValidateFeatures,
		"invalid_feature_count": job.InvalidFeatureCount,
		"inserted_features":     job.InsertedFeatures,
		"table_row_count":       job.TableRowCount,
		"start_time":            job.StartTime.Format(datetimeFormat),
		"end_time":              job.EndTime.Format(datetimeFormat),
		"duration":              formatDuration(job.Duration()),
		"status":                string(job.Status),
	})
}

// RecordFailure appends one quarantined feature with its property snapshot.
func (l *Ledger) RecordFailure(ctx context.Context, failure model.FailureRecord) {
	l.write(ctx, l.failures, warehouse.Row{
		"source_path": failure.SourcePath,
		"layer_name":  failure.LayerName,
		"table_id":    failure.TableID.String(),
		"row":         failure.Row,
		"props":       failure.Properties,
		"fail_time":   failure.FailTime.Format(datetimeFormat),
		"fail_reason": string(failure.Reason),
	})
}

func (l *Ledger) write(ctx context.Context, id model.TableID, row warehouse.Row) {
	rowErrs, err := l.wh.InsertRows(ctx, id, []warehouse.Row{row})
	if err == nil && len(rowErrs) > 0 {
		err = rowErrs[0].Err
	}
	if err != nil {
		l.logger.Warnf(`cannot write to ledger table "%s": %s`, id, err)
	}
}

// JobsSchema is the schema of the load_jobs table.
func JobsSchema() model.TableSchema {
	return model.TableSchema{Columns: []model.Column{
		{Name: "source_path", Type: model.TypeString},
		{Name: "layer_name", Type: model.TypeString},
		{Name: "table_id", Type: model.TypeString},
		{Name: "input_feature_count", Type: model.TypeInteger},
		{Name: "job_size", Type: model.TypeInteger},
		{Name: "job_count", Type: model.TypeInteger},
		{Name: "start_at", Type: model.TypeInteger},
		{Name: "validate_feature", Type: model.TypeBoolean},
		{Name: "invalid_feature_count", Type: model.TypeInteger},
		{Name: "inserted_features", Type: model.TypeInteger},
		{Name: "table_row_count", Type: model.TypeInteger},
		{Name: "start_time", Type: model.TypeDatetime},
		{Name: "end_time", Type: model.TypeDatetime},
		{Name: "duration", Type: model.TypeString},
		{Name: "status", Type: model.TypeString},
	}}
}

// FailuresSchema is the schema of the load_failures table.
func FailuresSchema() model.TableSchema {
	return model.TableSchema{Columns: []model.Column{
		{Name: "source_path", Type: model.TypeString},
		{Name: "layer_name", Type: model.TypeString},
		{Name: "table_id", Type: model.TypeString},
		{Name: "row", Type: model.TypeInteger},
		{Name: "props", Type: model.TypeJSON},
		{Name: "fail_time", Type: model.TypeDatetime},
		{Name: "fail_reason", Type: model.TypeString},
	}}
}

// formatDuration renders a duration the way the ledger stores it,
// for example "2 hours, 15 minutes, 1 second".
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	var parts []string
	add := func(n int, unit string) {
		switch {
		case n == 1:
			parts = append(parts, "1 "+unit)
		case n > 1:
			parts = append(parts, fmt.Sprintf("%d %ss", n, unit))
		}
	}
	add(total/86400, "day")
	add(total%86400/3600, "hour")
	add(total%3600/60, "minute")
	add(total%60, "second")
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, ", ")
}
