package loader

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/schollz/progressbar/v3"

	"github.com/bluecarto/geoloader/internal/pkg/encoding/json"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/source"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

// DefaultStreamChunkSize is the number of rows per streaming insert.
const DefaultStreamChunkSize = 1000

// skipLogEvery limits the progress logging while seeking to the start row.
const skipLogEvery = 100

// Job describes one load run. The value stays unchanged for the whole run,
// all progress lives in the private run state.
type Job struct {
	// Table is the load target, it must exist before the run.
	Table model.TableID
	// JobSize is the number of features per bulk load job, 0 means optimum.
	JobSize int
	// StartAt skips the source rows below this index, it resumes an interrupted run.
	StartAt int
	// ValidateFeatures quarantines invalid features instead of loading them.
	ValidateFeatures bool
	// StreamChunkSize is the number of rows per streaming insert, 0 means the default.
	StreamChunkSize int
	// RawGeometryColumn redirects geometries to a string column as hex WKB
	// and forces the streaming path. Database loads use it, the geography
	// column is materialized later by a repair statement.
	RawGeometryColumn string
}

// Loader runs load jobs against one warehouse.
type Loader struct {
	logger log.Logger
	clock  clockwork.Clock
	wh     warehouse.Warehouse
	ledger *Ledger
	out    io.Writer
}

// New creates a loader, progress bars render to out.
func New(logger log.Logger, clock clockwork.Clock, wh warehouse.Warehouse, ledger *Ledger, out io.Writer) *Loader {
	return &Loader{logger: logger, clock: clock, wh: wh, ledger: ledger, out: out}
}

// Run moves the features of the source into the target table and records the
// run in the job ledger. The returned LoadJob mirrors the ledger row, it is
// valid also when the run ended INTERRUPTED with an error.
func (l *Loader) Run(ctx context.Context, src source.Source, job Job) (model.LoadJob, error) {
	startTime := l.clock.Now()
	count := src.Count()
	l.logger.Infof("input feature count: %d", count)

	tableSchema, err := l.wh.TableSchema(ctx, job.Table)
	if err != nil {
		return model.LoadJob{}, err
	}
	encoder := NewRowEncoder(tableSchema)

	streaming := job.RawGeometryColumn != "" || src.Classification() == model.NonSpatialDataset
	var jobSize int
	if streaming {
		if job.RawGeometryColumn != "" {
			encoder.GeometryAsHexWKB(job.RawGeometryColumn)
		}
		jobSize = job.StreamChunkSize
		if jobSize <= 0 {
			jobSize = DefaultStreamChunkSize
		}
	} else {
		jobSize = ResolveJobSize(l.logger, job.JobSize, count)
	}
	jobCount := JobCount(count, job.StartAt, jobSize)
	if streaming {
		l.logger.Infof("chunk size: %d", jobSize)
	} else {
		l.logger.Infof("job size: %d", jobSize)
		l.logger.Infof("job count: %d (the actual count depends on the number of invalid features)", jobCount)
	}
	if job.StartAt > 0 {
		l.logger.Infof("starting at row: %d", job.StartAt)
	}

	r := &run{
		Loader:   l,
		src:      src,
		job:      job,
		encoder:  encoder,
		count:    count,
		jobSize:  jobSize,
		jobCount: jobCount,
		filename: filepath.Base(src.Path()),
	}
	var runErr error
	if streaming {
		runErr = r.stream(ctx)
	} else {
		runErr = r.bulk(ctx)
	}

	status := model.JobCompleted
	if runErr != nil {
		status = model.JobInterrupted
	}
	result := model.LoadJob{
		SourcePath:          src.Path(),
		LayerName:           src.Layer(),
		TableID:             job.Table,
		InputFeatureCount:   count,
		JobSize:             jobSize,
		JobCount:            jobCount,
		StartAt:             job.StartAt,
		ValidateFeatures:    job.ValidateFeatures,
		InvalidFeatureCount: r.invalid,
		InsertedFeatures:    r.inserted,
		StartTime:           startTime,
		EndTime:             l.clock.Now(),
		Status:              status,
	}
	if rowCount, err := l.wh.TableRowCount(ctx, job.Table); err == nil {
		result.TableRowCount = rowCount
	} else {
		l.logger.Warnf(`cannot read the row count of table "%s": %s`, job.Table, err)
	}

	l.ledger.RecordJob(ctx, result)
	return result, runErr
}

// run owns the counters of one job execution.
type run struct {
	*Loader
	src      source.Source
	job      Job
	encoder  *RowEncoder
	count    int
	jobSize  int
	jobCount int
	filename string
	inserted int
	invalid  int
	flushed  int
}

// bulk accumulates features into batches of the job size and submits each
// one as a bulk load job over a temporary interchange file. A failed load
// interrupts the run, already committed batches stay committed.
func (r *run) bulk(ctx context.Context) error {
	features, err := r.src.Features(ctx)
	if err != nil {
		return err
	}

	var validator *Validator
	if r.job.ValidateFeatures {
		validator = NewValidator(r.src.Schema())
	}

	bar := r.newProgressBar()
	defer func() { _ = bar.Finish() }()

	batch := model.NewBatch(r.jobSize)
	for features.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		f := features.Feature()
		if r.skip(f) {
			continue
		}
		_ = bar.Add(1)

		if validator != nil {
			if err := validator.Validate(f); err != nil {
				var validationErr ValidationError
				if !errors.As(err, &validationErr) {
					return err
				}
				r.quarantine(ctx, f, validationErr)
				continue
			}
		}

		batch.Add(f)
		if batch.Full() {
			if err := r.flush(ctx, batch); err != nil {
				return err
			}
		}
	}
	if err := features.Err(); err != nil {
		return err
	}
	if !batch.Empty() {
		return r.flush(ctx, batch)
	}
	return nil
}

// stream converts features to rows and inserts them in chunks. A failed
// chunk is logged and the run continues, the job fails only when no row at
// all could be inserted.
func (r *run) stream(ctx context.Context) error {
	features, err := r.src.Features(ctx)
	if err != nil {
		return err
	}

	rows := make([]warehouse.Row, 0, r.jobSize)
	for features.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		f := features.Feature()
		if r.skip(f) {
			continue
		}

		row, err := r.encoder.Encode(f)
		if err != nil {
			return errors.PrefixErrorf(err, "cannot encode row %d", f.Index)
		}
		rows = append(rows, row)
		if len(rows) == r.jobSize {
			r.insertChunk(ctx, rows)
			rows = rows[:0]
		}
	}
	if err := features.Err(); err != nil {
		return err
	}
	if len(rows) > 0 {
		r.insertChunk(ctx, rows)
	}
	if r.inserted == 0 && r.count > r.job.StartAt {
		return errors.Errorf(`no rows were inserted into table "%s"`, r.job.Table)
	}
	return nil
}

// skip reports whether the feature is below the start row.
func (r *run) skip(f model.Feature) bool {
	if f.Index >= r.job.StartAt {
		return false
	}
	if f.Index%skipLogEvery == 0 {
		r.logger.Debugf("skipping to row %d, current position %d", r.job.StartAt, f.Index)
	}
	return true
}

// quarantine records the rejected feature in the failure ledger.
func (r *run) quarantine(ctx context.Context, f model.Feature, err ValidationError) {
	r.invalid++
	r.logger.Warnf("skipping: %s", err)
	r.ledger.RecordFailure(ctx, model.FailureRecord{
		SourcePath: r.src.Path(),
		LayerName:  r.src.Layer(),
		TableID:    r.job.Table,
		Row:        f.Index,
		Properties: json.MustEncodeString(f.Properties, false),
		FailTime:   r.clock.Now(),
		Reason:     err.Reason,
	})
}

func (r *run) flush(ctx context.Context, batch *model.Batch) error {
	size := batch.Len()
	if err := r.loadBatch(ctx, batch); err != nil {
		return errors.PrefixErrorf(err, `bulk job %d of "%s" failed`, r.flushed+1, r.filename)
	}
	r.flushed++
	r.inserted += size
	batch.Clear()
	r.logger.Infof(
		"loading %s: jobs %d/%d, features %d/%d, invalid %d",
		r.filename, r.flushed, r.jobCount, r.job.StartAt+r.inserted+r.invalid, r.count, r.invalid,
	)
	return nil
}

// loadBatch exports the batch to a temporary interchange file and submits
// one bulk load job over it.
func (r *run) loadBatch(ctx context.Context, batch *model.Batch) error {
	file, err := os.CreateTemp("", "geoloader-*.ndjson")
	if err != nil {
		return errors.Wrap(err, "cannot create the interchange file")
	}
	defer func() { _ = os.Remove(file.Name()) }()

	if err := writeBatch(file, r.encoder, batch); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return r.wh.LoadFromFile(ctx, r.job.Table, file.Name())
}

// insertChunk streams one chunk of rows into the target table.
func (r *run) insertChunk(ctx context.Context, rows []warehouse.Row) {
	rowErrs, err := r.wh.InsertRows(ctx, r.job.Table, rows)
	if err != nil {
		r.logger.Errorf(`cannot insert %d rows into table "%s": %s`, len(rows), r.job.Table, err)
		return
	}
	for _, rowErr := range rowErrs {
		r.logger.Warnf("chunk row %d rejected: %s", rowErr.Row, rowErr.Err)
	}
	r.flushed++
	r.inserted += len(rows) - len(rowErrs)
	r.logger.Debugf("inserted %d/%d rows", r.inserted, r.count-r.job.StartAt)
}

func (r *run) newProgressBar() *progressbar.ProgressBar {
	pending := r.count - r.job.StartAt
	if pending < 0 {
		pending = 0
	}
	return progressbar.NewOptions64(
		int64(pending),
		progressbar.OptionSetDescription(r.filename),
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// writeBatch writes one feature per line as a flat JSON object.
func writeBatch(out io.Writer, encoder *RowEncoder, batch *model.Batch) error {
	writer := bufio.NewWriter(out)
	for _, f := range batch.Features() {
		row, err := encoder.Encode(f)
		if err != nil {
			return err
		}
		line, err := json.Encode(row, false)
		if err != nil {
			return err
		}
		if _, err := writer.Write(line); err != nil {
			return err
		}
		if err := writer.WriteByte('\n'); err != nil {
			return err
		}
	}
	return writer.Flush()
}
