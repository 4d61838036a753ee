package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/mcsr-tools/splitwatch/internal/model"
)

// JSONPrinter prints run information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// transitionItem represents a transition in the list output.
type transitionItem struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source"`
	Milestone string    `json:"milestone"`
	ElapsedMS int64     `json:"elapsed_ms"`
	At        time.Time `json:"at"`
}

// statusOutput represents the current run state output.
type statusOutput struct {
	RunID      string     `json:"run_id"`
	Milestone  string     `json:"milestone"`
	ElapsedMS  int64      `json:"elapsed_ms"`
	NewRun     bool       `json:"new_run"`
	EpochStart *time.Time `json:"epoch_start,omitempty"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTransitions prints recorded transitions in JSON format.
func (j *JSONPrinter) PrintTransitions(transitions []model.Transition) error {
	items := make([]transitionItem, len(transitions))
	for i, tr := range transitions {
		items[i] = transitionItem{
			ID:        tr.ID,
			RunID:     tr.RunID,
			Kind:      string(tr.Kind),
			Source:    string(tr.Source),
			Milestone: string(tr.Milestone),
			ElapsedMS: tr.Elapsed.Milliseconds(),
			At:        tr.At.UTC(),
		}
	}

	return j.print(items)
}

// PrintStatus prints the current run state in JSON format.
func (j *JSONPrinter) PrintStatus(status model.Status) error {
	out := statusOutput{
		RunID:     status.RunID,
		Milestone: string(status.Milestone),
		ElapsedMS: status.Elapsed.Milliseconds(),
		NewRun:    status.NewRun,
	}
	if status.NewRun {
		t := status.EpochStart.UTC()
		out.EpochStart = &t
	}

	return j.print(out)
}

// PrintMessage prints a plain message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.print(messageOutput{Message: msg})
}

func (j *JSONPrinter) print(v interface{}) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
