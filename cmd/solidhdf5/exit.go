package solidhdf5

import (
	stderrors "errors"

	"github.com/arthur-debert/solidhdf5/pkg/store"
)

// Exit statuses for outcomes other than Success
const (
	ExitError        = 1
	ExitNameConflict = 2
	ExitNotFound     = 3
	ExitInaccessible = 4
)

// OutcomeError ends a command whose result was rendered but did not
// succeed. It carries no message of its own.
type OutcomeError struct {
	Outcome store.Outcome
}

func (e *OutcomeError) Error() string {
	return "outcome: " + e.Outcome.String()
}

// ExitCode returns the process status for the outcome
func (e *OutcomeError) ExitCode() int {
	switch e.Outcome {
	case store.NameConflict:
		return ExitNameConflict
	case store.NotFound:
		return ExitNotFound
	case store.Inaccessible:
		return ExitInaccessible
	}
	return ExitError
}

// ExitCode returns the process status for an error returned by the root command
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var oe *OutcomeError
	if stderrors.As(err, &oe) {
		return oe.ExitCode()
	}
	return ExitError
}

// IsOutcome reports whether err only signals an already rendered outcome
func IsOutcome(err error) bool {
	var oe *OutcomeError
	return stderrors.As(err, &oe)
}

func exitFor(o store.Outcome) error {
	if o == store.Success {
		return nil
	}
	return &OutcomeError{Outcome: o}
}

// worst picks the outcome a batch exits with. Inaccessible ranks above
// NameConflict.
func worst(results []*store.StoreResult) store.Outcome {
	out := store.Success
	for _, r := range results {
		switch r.Outcome {
		case store.Inaccessible:
			return store.Inaccessible
		case store.NameConflict, store.NotFound:
			out = r.Outcome
		}
	}
	return out
}
