// Package postgres reads one database table as a source layer over pgx.
// A PostGIS geometry column, when present, turns the layer spatial.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bluecarto/geoloader/internal/pkg/geo"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/source"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

type Source struct {
	logger         log.Logger
	table          string
	tableSchema    string
	tableName      string
	conn           *pgx.Conn
	schema         *model.Schema
	geometryColumn string
	properties     []string
	count          int
	iterated       bool
}

// Open connects with the DSN and reads the table metadata.
// The table is "name" in the public schema or "schema.name".
func Open(ctx context.Context, logger log.Logger, dsn, table string) (s *Source, err error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to the database")
	}
	defer func() {
		if err != nil {
			_ = conn.Close(ctx)
		}
	}()

	tableSchema, tableName := splitTable(table)
	s = &Source{
		logger:      logger,
		table:       table,
		tableSchema: tableSchema,
		tableName:   tableName,
		conn:        conn,
	}
	if err := s.loadSchema(ctx); err != nil {
		return nil, err
	}

	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s.%s`, quote(tableSchema), quote(tableName))
	if err := conn.QueryRow(ctx, countQuery).Scan(&s.count); err != nil {
		return nil, errors.Wrapf(err, `cannot count table "%s"`, table)
	}
	return s, nil
}

func (s *Source) loadSchema(ctx context.Context) error {
	rows, err := s.conn.Query(ctx, `
		SELECT column_name, data_type, udt_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`, s.tableSchema, s.tableName)
	if err != nil {
		return errors.Wrapf(err, `cannot read columns of table "%s"`, s.table)
	}
	defer rows.Close()

	schema := model.NewSchema()
	for rows.Next() {
		var name, dataType, udtName string
		if err := rows.Scan(&name, &dataType, &udtName); err != nil {
			return err
		}
		descriptor := descriptorFor(dataType, udtName)
		schema.SetProperty(name, descriptor)
		if model.IsSpatialDescriptor(descriptor) && s.geometryColumn == "" {
			s.geometryColumn = name
			continue
		}
		s.properties = append(s.properties, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if schema.Properties.Len() == 0 {
		return errors.Errorf(`table "%s" not found`, s.table)
	}

	s.schema = schema
	return nil
}

func (s *Source) Path() string {
	return s.table
}

func (s *Source) Layer() string {
	return s.tableName
}

func (s *Source) Schema() *model.Schema {
	return s.schema
}

func (s *Source) Count() int {
	return s.count
}

func (s *Source) Classification() model.Classification {
	return s.schema.Classification()
}

func (s *Source) Features(ctx context.Context) (source.Iterator, error) {
	if s.iterated {
		return nil, errors.Errorf(`features of "%s" already consumed`, s.table)
	}
	s.iterated = true

	columns := make([]string, 0, len(s.properties)+1)
	for _, name := range s.properties {
		descriptor, _ := s.schema.Property(name)
		columns = append(columns, columnExpr(name, descriptor))
	}
	if s.geometryColumn != "" {
		columns = append(columns, quote(s.geometryColumn)+"::text")
	}

	// ctid gives a stable order within one scan, enough for resumed jobs
	// on tables that do not change between the runs.
	query := fmt.Sprintf(
		`SELECT %s FROM %s.%s ORDER BY ctid`,
		strings.Join(columns, ", "), quote(s.tableSchema), quote(s.tableName),
	)
	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, `cannot read table "%s"`, s.table)
	}
	return &iterator{source: s, rows: rows, index: -1}, nil
}

func (s *Source) Close() error {
	return s.conn.Close(context.Background())
}

type iterator struct {
	source  *Source
	rows    pgx.Rows
	index   int
	feature model.Feature
	err     error
}

func (it *iterator) Next() bool {
	if it.err != nil {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		it.rows.Close()
		return false
	}
	it.index++

	values, err := it.rows.Values()
	if err != nil {
		it.err = errors.Wrapf(err, `cannot read row %d of table "%s"`, it.index, it.source.table)
		return false
	}

	feature := model.NewFeature(it.index)
	for i, name := range it.source.properties {
		feature.Properties.Set(name, values[i])
	}
	if it.source.geometryColumn != "" {
		if raw, ok := values[len(values)-1].(string); ok && raw != "" {
			geometry, err := geo.DecodeEWKBHex(raw)
			if err != nil {
				it.err = errors.Wrapf(err, `cannot read geometry of row %d of table "%s"`, it.index, it.source.table)
				return false
			}
			feature.Geometry = geometry
		}
	}
	it.feature = feature
	return true
}

func (it *iterator) Feature() model.Feature {
	return it.feature
}

func (it *iterator) Err() error {
	return it.err
}

// splitTable splits "schema.name", a plain name belongs to public.
func splitTable(table string) (string, string) {
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "public", table
}

// descriptorFor picks the type descriptor from information_schema values.
// USER-DEFINED and ARRAY types are only meaningful through their udt_name.
func descriptorFor(dataType, udtName string) string {
	switch dataType {
	case "USER-DEFINED":
		return strings.ToLower(udtName)
	case "ARRAY":
		return strings.ToLower(udtName)
	default:
		return strings.ToLower(dataType)
	}
}

// columnExpr casts types the JSON encoder cannot take natively to text
// or float8 already in the query.
func columnExpr(name, descriptor string) string {
	switch descriptor {
	case "numeric":
		return quote(name) + "::float8"
	case "money":
		return quote(name) + "::numeric::float8"
	case "json", "jsonb", "uuid", "interval", "time", "time with time zone", "time without time zone":
		return quote(name) + "::text"
	default:
		return quote(name)
	}
}

// quote escapes an identifier.
func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
