// Package oracle provides the extraction oracle: given a task and the user's
// latest message it returns free-form text that should embed a JSON object.
package oracle

import (
	"context"

	"loan-intake/pkg/registry"
)

// Oracle answers one extraction task for one message.
type Oracle interface {
	Extract(ctx context.Context, task registry.Task, text string) (string, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, task registry.Task, text string) (string, error)

func (f Func) Extract(ctx context.Context, task registry.Task, text string) (string, error) {
	return f(ctx, task, text)
}
