package notification

import (
	"time"
)

type Action int

const (
	ActionInject Action = iota + 1
	ActionConvert
	ActionSkip
	ActionError
)

type Sender interface {
	CanSend() bool
	Send(title string, description string, runTime time.Duration, fields []Field, dryRun bool) error
	BuildField(action Action, options BuildOptions) Field
	Name() string
}

type Field struct {
	Name  string
	Value string
}

type BuildOptions struct {
	Folder  string
	Archive string
	Size    int64

	// NewPath is the resulting archive path after a conversion.
	NewPath string

	// Reason explains a skip or a failure.
	Reason string
}
