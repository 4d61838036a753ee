package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/presence"
)

// TablePrinter prints run information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTransitions prints recorded transitions in a table format.
func (t *TablePrinter) PrintTransitions(transitions []model.Transition) error {
	if len(transitions) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "RUN\tKIND\tSOURCE\tMILESTONE\tIGT\tWHEN")

	// Print rows.
	for _, tr := range transitions {
		igt := ""
		if tr.Elapsed > 0 {
			igt = presence.FormatIGT(tr.Elapsed)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tr.RunID, tr.Kind, tr.Source, tr.Milestone, igt, TimeAgo(tr.At))
	}

	return nil
}

// PrintStatus prints the current run state.
func (t *TablePrinter) PrintStatus(status model.Status) error {
	fmt.Fprintf(t.writer, "Run:        %s\n", status.RunID)
	fmt.Fprintf(t.writer, "Milestone:  %s\n", status.Milestone)
	if status.Elapsed > 0 {
		fmt.Fprintf(t.writer, "IGT:        %s\n", presence.FormatIGT(status.Elapsed))
	}
	if status.NewRun {
		fmt.Fprintf(t.writer, "Started:    %s\n", FormatTimestamp(status.EpochStart))
	}

	return nil
}

// PrintMessage prints a plain message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}
