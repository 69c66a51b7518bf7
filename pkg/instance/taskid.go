package instance

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mesosphere/marathon-go/pkg/runspec"
)

// NewTaskID mints a fresh task id scoped to runSpecID, satisfying the
// invariant that a task id is prefixed by its run spec's id.
func NewTaskID(runSpecID runspec.Id) TaskID {
	return TaskID(fmt.Sprintf("%s.%s", runSpecID, uuid.NewString()))
}
