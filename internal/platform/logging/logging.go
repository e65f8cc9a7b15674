package logging

import (
	"io"
	"os"

	hclog "github.com/hashicorp/go-hclog"
)

// New returns the root logger. Components derive their own with Named.
func New(level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "intervals",
		Level:  hclog.LevelFromString(level),
		Output: output,
	})
}

// Discard is used by tests and by commands that print their own output.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
