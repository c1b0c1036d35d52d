package warehouse

import (
	"fmt"
	"time"

	"github.com/bluecarto/geoloader/internal/pkg/model"
)

// TableNotFoundError is returned by schema reads of a missing table.
type TableNotFoundError struct {
	Table model.TableID
}

func (e TableNotFoundError) Error() string {
	return fmt.Sprintf(`table "%s" not found`, e.Table)
}

// TableVisibilityTimeoutError is returned when a created table did not
// become visible within the wait budget.
type TableVisibilityTimeoutError struct {
	Table  model.TableID
	Waited time.Duration
}

func (e TableVisibilityTimeoutError) Error() string {
	return fmt.Sprintf(`table "%s" is still not visible after %s`, e.Table, e.Waited)
}
