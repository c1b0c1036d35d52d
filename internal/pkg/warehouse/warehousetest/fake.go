// Package warehousetest provides an in-memory Warehouse for tests.
package warehousetest

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/bluecarto/geoloader/internal/pkg/encoding/json"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

// Fake implements warehouse.Warehouse on in-memory tables.
// The zero value is not usable, use New.
type Fake struct {
	lock       sync.Mutex
	datasets   map[string]bool
	tables     map[string]*Table
	hidden     map[string]int
	executed   []string
	insertErr  error
	rowErrors  []warehouse.RowError
	loadCalls  int
	failLoadAt int
	loadErr    error
	closed     bool
}

// Table is the stored state of one fake table.
type Table struct {
	ID     model.TableID
	Schema model.TableSchema
	Rows   []warehouse.Row
}

func New() *Fake {
	return &Fake{
		datasets: make(map[string]bool),
		tables:   make(map[string]*Table),
		hidden:   make(map[string]int),
	}
}

// HideFromExistenceChecks makes the next n TableExists calls report the
// table as missing, it emulates delayed visibility of a new table.
func (f *Fake) HideFromExistenceChecks(id model.TableID, n int) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.hidden[id.String()] = n
}

// FailNextInsert makes the next InsertRows call fail as a whole.
func (f *Fake) FailNextInsert(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.insertErr = err
}

// RejectRows makes the next InsertRows call reject the given rows.
func (f *Fake) RejectRows(rejected ...warehouse.RowError) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.rowErrors = rejected
}

// FailNextLoad makes the next LoadFromFile call fail.
func (f *Fake) FailNextLoad(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.failLoadAt = f.loadCalls + 1
	f.loadErr = err
}

// FailLoadCall makes the n-th LoadFromFile call of the fake's lifetime fail,
// counted from 1. Earlier and later calls pass.
func (f *Fake) FailLoadCall(n int, err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.failLoadAt = n
	f.loadErr = err
}

// Table returns the stored table, or nil when it does not exist.
func (f *Fake) Table(id model.TableID) *Table {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.tables[id.String()]
}

// Datasets returns the names of the datasets created so far.
func (f *Fake) Datasets() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	out := make([]string, 0, len(f.datasets))
	for name := range f.datasets {
		out = append(out, name)
	}
	return out
}

// Executed returns the statements passed to Execute, in call order.
func (f *Fake) Executed() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.executed...)
}

func (f *Fake) EnsureDataset(_ context.Context, dataset string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.datasets[dataset] = true
	return nil
}

func (f *Fake) TableExists(_ context.Context, id model.TableID) (bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	key := id.String()
	if f.hidden[key] > 0 {
		f.hidden[key]--
		return false, nil
	}
	_, found := f.tables[key]
	return found, nil
}

func (f *Fake) CreateTable(_ context.Context, id model.TableID, schema model.TableSchema) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	key := id.String()
	if _, found := f.tables[key]; found {
		return errors.Errorf(`table "%s" already exists`, id)
	}
	f.tables[key] = &Table{ID: id, Schema: schema}
	return nil
}

func (f *Fake) DeleteTable(_ context.Context, id model.TableID) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	delete(f.tables, id.String())
	return nil
}

func (f *Fake) TableSchema(_ context.Context, id model.TableID) (model.TableSchema, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	table, found := f.tables[id.String()]
	if !found {
		return model.TableSchema{}, warehouse.TableNotFoundError{Table: id}
	}
	return table.Schema, nil
}

func (f *Fake) AddColumns(_ context.Context, id model.TableID, columns []model.Column) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	table, found := f.tables[id.String()]
	if !found {
		return warehouse.TableNotFoundError{Table: id}
	}
	for _, column := range columns {
		if _, exists := table.Schema.Column(column.Name); exists {
			return errors.Errorf(`column "%s" already exists in table "%s"`, column.Name, id)
		}
		table.Schema.Columns = append(table.Schema.Columns, column)
	}
	return nil
}

func (f *Fake) TableRowCount(_ context.Context, id model.TableID) (int64, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	table, found := f.tables[id.String()]
	if !found {
		return 0, warehouse.TableNotFoundError{Table: id}
	}
	return int64(len(table.Rows)), nil
}

func (f *Fake) InsertRows(_ context.Context, id model.TableID, rows []warehouse.Row) ([]warehouse.RowError, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.insertErr; err != nil {
		f.insertErr = nil
		return nil, err
	}
	table, found := f.tables[id.String()]
	if !found {
		return nil, warehouse.TableNotFoundError{Table: id}
	}
	if rejected := f.rowErrors; len(rejected) > 0 {
		f.rowErrors = nil
		skip := make(map[int]bool, len(rejected))
		for _, r := range rejected {
			skip[r.Row] = true
		}
		for i, row := range rows {
			if !skip[i] {
				table.Rows = append(table.Rows, row)
			}
		}
		return rejected, nil
	}
	table.Rows = append(table.Rows, rows...)
	return nil, nil
}

func (f *Fake) LoadFromFile(_ context.Context, id model.TableID, path string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.loadCalls++
	if f.loadErr != nil && f.loadCalls == f.failLoadAt {
		err := f.loadErr
		f.loadErr = nil
		return err
	}
	table, found := f.tables[id.String()]
	if !found {
		return warehouse.TableNotFoundError{Table: id}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, `cannot read load file "%s"`, path)
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := warehouse.Row{}
		if err := json.DecodeString(line, &row); err != nil {
			return errors.Wrapf(err, `malformed line in load file "%s"`, path)
		}
		table.Rows = append(table.Rows, row)
	}
	return nil
}

func (f *Fake) Execute(_ context.Context, query string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.executed = append(f.executed, query)
	return nil
}

func (f *Fake) Close() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.closed = true
	return nil
}
