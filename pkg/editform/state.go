package editform

import "strconv"

// State is the lifecycle position of a Controller:
//
//	Empty → Loading → Populated ⇄ Editing → Submitting → {Done | Editing}
//
// A failed load ends in Aborted.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StatePopulated
	StateEditing
	StateSubmitting
	StateDone
	StateAborted
)

var stateNames = [...]string{
	StateEmpty:      "empty",
	StateLoading:    "loading",
	StatePopulated:  "populated",
	StateEditing:    "editing",
	StateSubmitting: "submitting",
	StateDone:       "done",
	StateAborted:    "aborted",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Editable reports whether field updates and submits are accepted.
func (s State) Editable() bool {
	return s == StatePopulated || s == StateEditing
}

// ReferenceMode decides what a failed kelurahan list fetch does to the form.
type ReferenceMode int

const (
	// ReferenceAbort treats the failure like an entity load failure: notify
	// and leave the page.
	ReferenceAbort ReferenceMode = iota
	// ReferenceDegrade keeps the populated form with an empty selector and a
	// warning notification.
	ReferenceDegrade
)

func (m ReferenceMode) String() string {
	if m == ReferenceDegrade {
		return "degrade"
	}
	return "abort"
}
