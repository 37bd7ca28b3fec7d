package simrun

import "fmt"

// ErrRadioSilence is returned when the event queue drains before either
// tally clears the consensus threshold. The driver still reports whatever
// it has - this is a benign, expected outcome, not a crash.
var ErrRadioSilence = fmt.Errorf("simrun: radio silence - event queue emptied before consensus")

// InvariantError reports a violated simulation invariant: these are bugs,
// not runtime faults, and the driver halts immediately rather than
// continuing on corrupted state.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("simrun: invariant violated (%s): %s", e.Invariant, e.Detail)
}
