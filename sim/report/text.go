package report

import (
	"bufio"
	"io"

	"github.com/epidemic-sim/sir-sim/sim"
)

func init() {
	Register(FormatText, func(w io.Writer) Writer { return NewTextWriter(w) })
}

// TextWriter emits one "Year Y, Month M - Susceptible: ..." line per report.
type TextWriter struct {
	bw *bufio.Writer
}

func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{bw: bufio.NewWriter(w)}
}

func (t *TextWriter) Emit(r sim.Report) error {
	if _, err := t.bw.WriteString(r.String()); err != nil {
		return err
	}
	return t.bw.WriteByte('\n')
}

func (t *TextWriter) Flush() error { return t.bw.Flush() }
