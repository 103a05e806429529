// Package noop provides the tracker used when error reporting is
// disabled by config or Sentry initialization fails: the logger keeps
// its tracker hook, every call discards.
package noop

import (
	"context"

	"verdant/pkg/errors"
)

// Tracker discards everything. The zero value is usable.
type Tracker struct{}

func New() *Tracker { return &Tracker{} }

func (*Tracker) CaptureError(context.Context, error, map[string]string) error {
	return nil
}

func (*Tracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}

func (*Tracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {
}

func (*Tracker) Flush(context.Context) error {
	return nil
}
