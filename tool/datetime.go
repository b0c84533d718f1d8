package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentrelay/internal/util"
)

// DateTimeOptions configure the date_time tool.
type DateTimeOptions struct {
	// Location for rendering; defaults to the process local zone.
	Location *time.Location
	// Now is injectable for tests.
	Now func() time.Time
}

// NewDateTimeTool returns the date_time tool reporting the current date and
// time. Orchestrators and calendar-centric agents register it so models can
// resolve relative dates.
func NewDateTimeTool(optFns ...func(o *DateTimeOptions)) *FunctionTool {
	opts := DateTimeOptions{Location: time.Local, Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return NewFunctionTool(
		"date_time",
		"Obtain the current date and time.",
		util.ObjectSchema(map[string]any{}),
		func(_ context.Context, _ *Context, _ map[string]any) (any, error) {
			return fmt.Sprintf("The current date and time is: %s", opts.Now().In(opts.Location).Format("2006-01-02 15:04:05 MST")), nil
		},
	)
}
