package editform

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-posyandu/pkg/apiclient"
)

var (
	// ErrBusy is returned when Submit is called while an update is in flight.
	ErrBusy = errors.New("editform: submit already in progress")
	// ErrNotEditable is returned when the form is not in an editable state.
	ErrNotEditable = errors.New("editform: form is not editable")
	// ErrClosed is returned when a request settles after Close; its result
	// has been discarded.
	ErrClosed = errors.New("editform: form closed")
)

// LoadError reports a failed initial fetch. Reference is true when the
// kelurahan option list, not the entity, failed to load.
type LoadError struct {
	ID        string
	Reference bool
	Err       error
}

func (e *LoadError) Error() string {
	what := "posyandu " + e.ID
	if e.Reference {
		what = "kelurahan options"
	}
	return fmt.Sprintf("editform: load %s: %v", what, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// TimedOut reports whether the fetch failed because it exceeded its deadline.
func (e *LoadError) TimedOut() bool { return timedOut(e.Err) }

// SubmitError reports a failed update call. Form values are left as they
// were so the user can retry.
type SubmitError struct {
	ID  string
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("editform: update posyandu %s: %v", e.ID, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// TimedOut reports whether the update exceeded its deadline.
func (e *SubmitError) TimedOut() bool { return timedOut(e.Err) }

func timedOut(err error) bool {
	return errors.Is(err, apiclient.ErrTimedOut) || errors.Is(err, context.DeadlineExceeded)
}
