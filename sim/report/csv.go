package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/epidemic-sim/sir-sim/sim"
)

func init() {
	Register(FormatCSV, func(w io.Writer) Writer { return NewCSVWriter(w) })
}

// csvHeader names the columns. month is the absolute month index (year*12 + month-1),
// suited to plotting a single time axis.
var csvHeader = []string{"month", "susceptible", "infected", "recovered"}

// CSVWriter emits a header followed by one row per report.
type CSVWriter struct {
	cw          *csv.Writer
	wroteHeader bool
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{cw: csv.NewWriter(w)}
}

func (c *CSVWriter) Emit(r sim.Report) error {
	if !c.wroteHeader {
		if err := c.cw.Write(csvHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	return c.cw.Write([]string{
		strconv.Itoa(r.Step),
		strconv.FormatInt(r.Susceptible, 10),
		strconv.FormatInt(r.Infected, 10),
		strconv.FormatInt(r.Recovered, 10),
	})
}

// Flush writes the header even when no rows were emitted.
func (c *CSVWriter) Flush() error {
	if !c.wroteHeader {
		if err := c.cw.Write(csvHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	c.cw.Flush()
	return c.cw.Error()
}
