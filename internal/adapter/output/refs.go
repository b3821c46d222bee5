package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/miwok/internal/model"
)

// RefsFormatter outputs just the audio references, one per line.
// Useful for piping into another player or a file check.
type RefsFormatter struct{}

// NewRefsFormatter creates a new audio reference formatter.
func NewRefsFormatter() *RefsFormatter {
	return &RefsFormatter{}
}

// Format writes audio references to the writer, one per line.
func (f *RefsFormatter) Format(w io.Writer, entries []model.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.Audio); err != nil {
			return err
		}
	}
	return nil
}
