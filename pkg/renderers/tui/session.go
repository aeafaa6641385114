// Package tui runs the edit-posyandu form in a terminal. Prompts go through a
// PromptDriver (survey by default) and the form logic lives in editform.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-posyandu/pkg/editform"
	"github.com/goliatone/go-posyandu/pkg/messages"
	"github.com/goliatone/go-posyandu/pkg/model"
)

// Outcome is how an edit session ended.
type Outcome int

const (
	// OutcomeSaved means the update was accepted by the API.
	OutcomeSaved Outcome = iota
	// OutcomeCancelled means the user declined to submit.
	OutcomeCancelled
	// OutcomeAborted means the form could not be loaded or the user hit Ctrl+C.
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "aborted"
	}
}

// Session drives one editform.Controller through terminal prompts.
type Session struct {
	driver   PromptDriver
	messages editform.Messages
	theme    Theme
	logger   *zap.Logger
}

// NewSession constructs a session with the survey driver unless overridden.
func NewSession(options ...Option) (*Session, error) {
	s := &Session{
		driver:   NewSurveyDriver(nil),
		messages: messages.MustLoad(messages.DefaultLocale),
		theme:    DefaultTheme,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		return nil, ErrNoDriver
	}
	return s, nil
}

// Feedback returns the notifier and navigator to hand to editform.New. Both
// print through the session driver.
func (s *Session) Feedback(ctx context.Context) *Feedback {
	return &Feedback{ctx: ctx, driver: s.driver, theme: s.theme}
}

// Run loads the form when needed, then prompts, confirms and submits until
// the update succeeds or the user gives up.
func (s *Session) Run(ctx context.Context, form *editform.Controller) (Outcome, error) {
	if ctx == nil {
		return OutcomeAborted, errors.New("tui: context is required")
	}
	if form == nil {
		return OutcomeAborted, errors.New("tui: form is nil")
	}

	if form.State() == editform.StateEmpty {
		if err := form.Load(ctx); err != nil && !form.State().Editable() {
			return OutcomeAborted, err
		}
	}
	if !form.State().Editable() {
		return OutcomeAborted, editform.ErrNotEditable
	}

	for {
		if err := s.promptFields(ctx, form); err != nil {
			return s.interrupted(form, err)
		}

		ok, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: s.messages.Text(messages.FormConfirmSubmit),
			Default: true,
		})
		if err != nil {
			return s.interrupted(form, err)
		}
		if !ok {
			form.Cancel()
			return OutcomeCancelled, nil
		}

		if _, verr := model.Validate(form.Values()); verr == nil {
			_ = s.driver.Info(ctx, s.theme.InfoPrefix+s.messages.Text(messages.FormUpdating))
		}
		err = form.Submit(ctx)
		if err == nil {
			return OutcomeSaved, nil
		}
		s.logger.Debug("submit did not complete", zap.Error(err))
		if !retryable(err) {
			return OutcomeAborted, err
		}

		again, cerr := s.driver.Confirm(ctx, ConfirmConfig{
			Message: s.messages.Text(messages.FormEditAgain),
			Default: true,
		})
		if cerr != nil {
			return s.interrupted(form, cerr)
		}
		if !again {
			form.Cancel()
			return OutcomeCancelled, err
		}
	}
}

func retryable(err error) bool {
	var verr *model.ValidationError
	var serr *editform.SubmitError
	return errors.As(err, &verr) || errors.As(err, &serr)
}

func (s *Session) interrupted(form *editform.Controller, err error) (Outcome, error) {
	form.Close()
	if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) {
		return OutcomeAborted, ErrAborted
	}
	return OutcomeAborted, err
}

func (s *Session) promptFields(ctx context.Context, form *editform.Controller) error {
	for _, field := range model.Fields() {
		value, err := s.promptField(ctx, form, field)
		if err != nil {
			return err
		}
		if err := form.UpdateField(field, value); err != nil {
			return fmt.Errorf("tui: set %s: %w", field, err)
		}
	}
	return nil
}

func (s *Session) promptField(ctx context.Context, form *editform.Controller, field model.Field) (string, error) {
	current, err := form.Values().Get(field)
	if err != nil {
		return "", err
	}
	switch field {
	case model.FieldKelurahanID:
		options := form.Options()
		if len(options) == 0 {
			// Degraded load: no list to choose from, accept a raw id.
			return s.driver.Input(ctx, InputConfig{
				Message: s.theme.PromptPrefix + field.Label(),
				Default: current,
				Help:    field.Placeholder(),
			})
		}
		return s.selectKelurahan(ctx, field, options, current)
	case model.FieldAkreditasi:
		return s.selectAkreditasi(ctx, field, current)
	default:
		return s.driver.Input(ctx, InputConfig{
			Message: s.theme.PromptPrefix + field.Label(),
			Default: current,
			Help:    field.Placeholder(),
		})
	}
}

func (s *Session) selectKelurahan(ctx context.Context, field model.Field, options []model.KelurahanOption, current string) (string, error) {
	labels := make([]string, 0, len(options)+1)
	labels = append(labels, s.messages.Text(messages.FormSelectKelurahan))
	defaultIdx := 0
	for i, opt := range options {
		labels = append(labels, opt.Nama)
		if strconv.Itoa(opt.ID) == current {
			defaultIdx = i + 1
		}
	}
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      s.theme.PromptPrefix + field.Label(),
		Options:      labels,
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return "", err
	}
	if idx <= 0 || idx > len(options) {
		return "", nil
	}
	return strconv.Itoa(options[idx-1].ID), nil
}

func (s *Session) selectAkreditasi(ctx context.Context, field model.Field, current string) (string, error) {
	values := model.AkreditasiValues()
	labels := make([]string, 0, len(values)+1)
	labels = append(labels, s.messages.Text(messages.FormSelectAkreditasi))
	defaultIdx := 0
	for i, v := range values {
		labels = append(labels, v.Label())
		if string(v) == current {
			defaultIdx = i + 1
		}
	}
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      s.theme.PromptPrefix + field.Label(),
		Options:      labels,
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return "", err
	}
	if idx <= 0 || idx > len(values) {
		return "", nil
	}
	return string(values[idx-1]), nil
}

// Feedback prints controller notifications and records navigation.
type Feedback struct {
	ctx    context.Context
	driver PromptDriver
	theme  Theme

	mu    sync.Mutex
	route string
}

// Success implements editform.Notifier.
func (f *Feedback) Success(msg string) {
	_ = f.driver.Info(f.ctx, f.theme.SuccessPrefix+msg)
}

// Error implements editform.Notifier.
func (f *Feedback) Error(msg string) {
	_ = f.driver.Info(f.ctx, f.theme.ErrorPrefix+msg)
}

// Navigate implements editform.Navigator. A terminal has no router, so the
// route is printed and remembered.
func (f *Feedback) Navigate(route string) {
	f.mu.Lock()
	f.route = route
	f.mu.Unlock()
	_ = f.driver.Info(f.ctx, f.theme.InfoPrefix+route)
}

// Route returns the last route the form navigated to.
func (f *Feedback) Route() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.route
}
