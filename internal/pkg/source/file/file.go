// Package file opens a file source, the format is picked by the extension.
package file

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/source"
	"github.com/bluecarto/geoloader/internal/pkg/source/geojsonl"
	"github.com/bluecarto/geoloader/internal/pkg/source/geopackage"
	"github.com/bluecarto/geoloader/internal/pkg/source/shapefile"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

// Open dispatches to the source implementation for the file extension.
// The layer matters only for multi-layer formats.
func Open(ctx context.Context, logger log.Logger, path, layer string) (source.Source, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".shp":
		return shapefile.Open(ctx, logger, path)
	case ".gpkg":
		return geopackage.Open(ctx, logger, path, layer)
	case ".geojsonl", ".ndjson", ".jsonl":
		return geojsonl.Open(ctx, logger, path)
	default:
		return nil, errors.Errorf(`unsupported source "%s": unknown extension "%s"`, path, ext)
	}
}
