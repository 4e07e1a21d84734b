// Package report renders the monthly report stream in the supported output formats.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/epidemic-sim/sir-sim/sim"
)

// Writer is a ReportSink backed by an io.Writer. Flush must be called once the run
// has finished emitting.
type Writer interface {
	sim.ReportSink
	Flush() error
}

// Format names accepted by New.
const (
	FormatText  = "text"
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// writers maps format -> constructor. Populated by init() in each writer file.
var writers = map[string]func(w io.Writer) Writer{}

// Register adds or replaces the constructor for format (last wins).
func Register(format string, fn func(w io.Writer) Writer) { writers[format] = fn }

// IsValidFormat returns true if a writer is registered for format.
func IsValidFormat(format string) bool {
	_, ok := writers[format]
	return ok
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(writers))
	for name := range writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the writer registered for format.
func New(format string, w io.Writer) (Writer, error) {
	fn, ok := writers[format]
	if !ok {
		return nil, fmt.Errorf("unknown report format %q (have %v)", format, Formats())
	}
	return fn(w), nil
}
