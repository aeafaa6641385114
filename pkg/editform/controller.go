// Package editform holds the edit-posyandu form controller. It is UI
// agnostic: terminal and web front ends drive it and observe its state,
// while notifications and navigation go through small interfaces.
package editform

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-posyandu/pkg/messages"
	"github.com/goliatone/go-posyandu/pkg/model"
)

// API is the remote side of the form.
type API interface {
	GetPosyandu(ctx context.Context, id string) (model.Posyandu, error)
	ListKelurahan(ctx context.Context) ([]model.KelurahanOption, error)
	UpdatePosyandu(ctx context.Context, id string, payload model.UpdatePayload) error
}

// Notifier shows transient feedback to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(route string)
}

// Messages resolves localized texts by key.
type Messages interface {
	Text(key string) string
}

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot struct {
	ID       string
	State    State
	Busy     bool
	Values   model.FormValues
	Options  []model.KelurahanOption
	Selected *model.KelurahanOption
}

// Controller owns one edit form for a single posyandu id.
type Controller struct {
	id  string
	api API

	notifier      Notifier
	navigator     Navigator
	messages      Messages
	logger        *zap.Logger
	listRoute     string
	referenceMode ReferenceMode

	mu      sync.Mutex
	state   State
	busy    bool
	closed  bool
	values  model.FormValues
	options []model.KelurahanOption
}

// New creates a controller for id. Nothing is fetched until Load.
func New(id string, api API, opts ...Option) *Controller {
	c := &Controller{
		id:        id,
		api:       api,
		notifier:  nopNotifier{},
		navigator: nopNavigator{},
		messages:  messages.MustLoad(messages.DefaultLocale),
		logger:    zap.NewNop(),
		listRoute: DefaultListRoute,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.With(zap.String("posyandu_id", id))
	return c
}

// ID returns the entity id the form edits.
func (c *Controller) ID() string { return c.id }

// ListRoute returns the route used after success, cancel and load failures.
func (c *Controller) ListRoute() string { return c.listRoute }

// Load fetches the entity and then the kelurahan options. Either failure
// aborts the form (unless reference failures are configured to degrade).
func (c *Controller) Load(ctx context.Context) error {
	if err := c.LoadEntity(ctx); err != nil {
		return err
	}
	return c.LoadReferenceOptions(ctx)
}

// LoadEntity fetches the posyandu record and populates the form values.
func (c *Controller) LoadEntity(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateEmpty {
		c.mu.Unlock()
		return ErrNotEditable
	}
	c.state = StateLoading
	c.mu.Unlock()

	c.logger.Debug("loading posyandu")
	rec, err := c.api.GetPosyandu(ctx, c.id)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		c.state = StateAborted
		c.mu.Unlock()
		loadErr := &LoadError{ID: c.id, Err: err}
		c.abort(loadErr)
		return loadErr
	}
	c.values = model.FormValuesFromRecord(rec)
	c.state = StatePopulated
	c.mu.Unlock()
	return nil
}

// LoadReferenceOptions fetches the kelurahan list for the selector. It must
// run after LoadEntity succeeded.
func (c *Controller) LoadReferenceOptions(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.state.Editable() {
		c.mu.Unlock()
		return ErrNotEditable
	}
	c.mu.Unlock()

	c.logger.Debug("loading kelurahan options")
	options, err := c.api.ListKelurahan(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		loadErr := &LoadError{ID: c.id, Reference: true, Err: err}
		if c.referenceMode == ReferenceDegrade {
			c.options = nil
			c.mu.Unlock()
			c.logger.Warn("kelurahan options unavailable", zap.Error(err))
			c.notifier.Error(c.messages.Text(messages.ReferenceFailed))
			return loadErr
		}
		c.state = StateAborted
		c.mu.Unlock()
		c.abort(loadErr)
		return loadErr
	}
	c.options = slices.Clone(options)
	selected := c.values.KelurahanID
	c.mu.Unlock()

	if selected != "" && !model.CheckReference(selected, options) {
		c.logger.Warn("current kelurahan not in option list", zap.String("kelurahan_id", selected))
	}
	return nil
}

func (c *Controller) abort(err *LoadError) {
	c.logger.Error("load failed",
		zap.Bool("reference", err.Reference),
		zap.Bool("timed_out", err.TimedOut()),
		zap.Error(err.Err))
	c.notifier.Error(c.messages.Text(messages.LoadFailed))
	c.navigator.Navigate(c.listRoute)
}

// UpdateField replaces one form value. The value is kept exactly as given.
func (c *Controller) UpdateField(field model.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.state.Editable() {
		return ErrNotEditable
	}
	if err := c.values.Set(field, value); err != nil {
		return err
	}
	c.state = StateEditing
	return nil
}

// Submit validates the current values and sends the update. Validation
// failures never reach the API. A failed update keeps the values so the
// user can retry; success notifies and navigates to the list route.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.closed || !c.state.Editable() {
		c.mu.Unlock()
		return ErrNotEditable
	}
	// Validate under the lock so the checks and the busy flag are one step.
	payload, err := model.Validate(c.values)
	if err != nil {
		c.mu.Unlock()
		c.logger.Info("submit rejected", zap.Error(err))
		c.notifier.Error(c.messages.Text(validationKey(err)))
		return err
	}
	c.busy = true
	c.state = StateSubmitting
	c.mu.Unlock()

	c.logger.Debug("submitting update")
	err = c.api.UpdatePosyandu(ctx, c.id, payload)

	c.mu.Lock()
	c.busy = false
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		c.state = StateEditing
		c.mu.Unlock()
		subErr := &SubmitError{ID: c.id, Err: err}
		c.logger.Error("update failed", zap.Bool("timed_out", subErr.TimedOut()), zap.Error(err))
		key := messages.SubmitFailed
		if subErr.TimedOut() {
			key = messages.SubmitTimedOut
		}
		c.notifier.Error(c.messages.Text(key))
		return subErr
	}
	c.state = StateDone
	c.mu.Unlock()

	c.logger.Info("posyandu updated")
	c.notifier.Success(c.messages.Text(messages.SubmitSuccess))
	c.navigator.Navigate(c.listRoute)
	return nil
}

func validationKey(err error) string {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		switch verr.Kind {
		case model.NotANumber:
			return messages.ValidationNotANumber
		case model.InvalidReference:
			return messages.ValidationInvalidReference
		}
	}
	return messages.ValidationRequired
}

// Cancel abandons the edit and returns to the list route. Any request still
// in flight is discarded when it settles.
func (c *Controller) Cancel() {
	c.Close()
	c.navigator.Navigate(c.listRoute)
}

// Close detaches the controller. Late results are dropped without
// notifications or navigation.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Busy reports whether an update request is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Values returns a copy of the current form values.
func (c *Controller) Values() model.FormValues {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// Options returns the loaded kelurahan options.
func (c *Controller) Options() []model.KelurahanOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.options)
}

// SelectedOption returns the option matching the current kelurahan id.
func (c *Controller) SelectedOption() (model.KelurahanOption, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.FindOption(c.options, c.values.KelurahanID)
}

// Snapshot returns the whole view state under one lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		ID:      c.id,
		State:   c.state,
		Busy:    c.busy,
		Values:  c.values,
		Options: slices.Clone(c.options),
	}
	if opt, ok := model.FindOption(c.options, c.values.KelurahanID); ok {
		s.Selected = &opt
	}
	return s
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}
