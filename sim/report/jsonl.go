package report

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/epidemic-sim/sir-sim/sim"
)

func init() {
	Register(FormatJSONL, func(w io.Writer) Writer { return NewJSONLWriter(w) })
}

// JSONLWriter emits one JSON object per line.
type JSONLWriter struct {
	bw  *bufio.Writer
	enc *json.Encoder
}

func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	return &JSONLWriter{bw: bw, enc: json.NewEncoder(bw)}
}

func (j *JSONLWriter) Emit(r sim.Report) error { return j.enc.Encode(r) }

func (j *JSONLWriter) Flush() error { return j.bw.Flush() }
