package printer

import "github.com/mcsr-tools/splitwatch/internal/model"

// Printer knows how to print run information in different formats.
type Printer interface {
	PrintTransitions(transitions []model.Transition) error
	PrintStatus(status model.Status) error
	PrintMessage(msg string) error
}
