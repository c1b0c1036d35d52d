// Package geojsonl reads newline-delimited GeoJSON files.
// The schema is inferred from the first feature, the feature count comes
// from a full first pass over the file.
package geojsonl

import (
	"bufio"
	"bytes"
	"context"
	stdjson "encoding/json"
	"math"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/paulmach/orb/geojson"

	"github.com/bluecarto/geoloader/internal/pkg/encoding/json"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/source"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

// maxLineSize caps the scanner buffer. Geometries can be large, the row
// size check runs only after the line has been read.
const maxLineSize = 512 * datasize.MB

type Source struct {
	logger   log.Logger
	path     string
	schema   *model.Schema
	count    int
	iterated bool
}

// line is the decoded form of one feature. The properties keep the key
// order of the document, the geometry stays raw until needed.
type line struct {
	Type       string                 `json:"type"`
	Properties *orderedmap.OrderedMap `json:"properties"`
	Geometry   stdjson.RawMessage     `json:"geometry"`
}

func Open(_ context.Context, logger log.Logger, path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, `cannot open file "%s"`, path)
	}
	defer file.Close()

	s := &Source{logger: logger, path: path, schema: model.NewSchema()}

	// First pass: count features, infer the schema from the first one.
	scanner := newScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		content := bytes.TrimSpace(scanner.Bytes())
		if len(content) == 0 {
			continue
		}
		parsed, err := parseLine(content)
		if err != nil {
			return nil, errors.Wrapf(err, `malformed feature on line %d of "%s"`, lineNo, path)
		}
		if s.count == 0 {
			s.schema = inferSchema(parsed)
		}
		s.count++
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, `cannot read file "%s"`, path)
	}
	return s, nil
}

func (s *Source) Path() string {
	return s.path
}

// Layer is empty, the file is always a single layer.
func (s *Source) Layer() string {
	return ""
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

func (s *Source) Features(_ context.Context) (source.Iterator, error) {
	if s.iterated {
		return nil, errors.Errorf(`features of "%s" already consumed`, s.path)
	}
	s.iterated = true

	file, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, `cannot open file "%s"`, s.path)
	}
	return &iterator{source: s, file: file, scanner: newScanner(file), index: -1}, nil
}

// Close releases nothing, the iterator owns the file handle.
func (s *Source) Close() error {
	return nil
}

type iterator struct {
	source  *Source
	file    *os.File
	scanner *bufio.Scanner
	index   int
	feature model.Feature
	err     error
	closed  bool
}

func (it *iterator) Next() bool {
	if it.err != nil || it.closed {
		return false
	}
	for it.scanner.Scan() {
		content := bytes.TrimSpace(it.scanner.Bytes())
		if len(content) == 0 {
			continue
		}
		it.index++

		parsed, err := parseLine(content)
		if err != nil {
			it.err = errors.Wrapf(err, `malformed feature %d of "%s"`, it.index, it.source.path)
			it.close()
			return false
		}

		feature := model.NewFeature(it.index)
		if parsed.Properties != nil {
			feature.Properties = parsed.Properties
		}
		if len(parsed.Geometry) > 0 && string(parsed.Geometry) != "null" {
			geometry, err := geojson.UnmarshalGeometry(parsed.Geometry)
			if err != nil {
				it.err = errors.Wrapf(err, `malformed geometry of feature %d of "%s"`, it.index, it.source.path)
				it.close()
				return false
			}
			feature.Geometry = geometry.Geometry()
		}
		it.feature = feature
		return true
	}
	it.err = it.scanner.Err()
	it.close()
	return false
}

func (it *iterator) Feature() model.Feature {
	return it.feature
}

func (it *iterator) Err() error {
	return it.err
}

func (it *iterator) close() {
	if !it.closed {
		it.closed = true
		_ = it.file.Close()
	}
}

func newScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, int(datasize.MB)), int(maxLineSize))
	return scanner
}

func parseLine(content []byte) (line, error) {
	var parsed line
	if err := json.Decode(content, &parsed); err != nil {
		return line{}, err
	}
	return parsed, nil
}

// inferSchema derives property descriptors from the first feature.
func inferSchema(first line) *model.Schema {
	schema := model.NewSchema()
	if first.Properties != nil {
		for _, name := range first.Properties.Keys() {
			value, _ := first.Properties.Get(name)
			schema.SetProperty(name, descriptorOf(value))
		}
	}
	if len(first.Geometry) > 0 && string(first.Geometry) != "null" {
		if geometry, err := geojson.UnmarshalGeometry(first.Geometry); err == nil {
			schema.Geometry = geometry.Geometry().GeoJSONType()
		}
	}
	return schema
}

func descriptorOf(value any) string {
	switch v := value.(type) {
	case bool:
		return "bool"
	case string:
		return "str"
	case float64:
		if v == math.Trunc(v) {
			return "int"
		}
		return "float"
	case nil:
		// No type information, text is the safe default
		return "str"
	default:
		// Objects and arrays
		return "json"
	}
}
