// Package posyandu is the top-level entry point for embedding the Posyandu
// edit form in other Go programs. It re-exports the common types and wires
// the API client, form controller and dashboard with their defaults.
package posyandu

import (
	"context"

	"github.com/goliatone/go-posyandu/pkg/apiclient"
	"github.com/goliatone/go-posyandu/pkg/contract"
	"github.com/goliatone/go-posyandu/pkg/editform"
	"github.com/goliatone/go-posyandu/pkg/model"
	"github.com/goliatone/go-posyandu/pkg/web"
)

// Record is a Posyandu entity as returned by the API.
type Record = model.Posyandu

// KelurahanOption is one entry of the kelurahan reference list.
type KelurahanOption = model.KelurahanOption

// FormValues is the editable text state of the form.
type FormValues = model.FormValues

// UpdatePayload is the typed body sent on update.
type UpdatePayload = model.UpdatePayload

// Form drives one edit session.
type Form = editform.Controller

// NewClient builds an API client for baseURL with the embedded contract
// attached, so malformed records and payloads are rejected locally.
func NewClient(ctx context.Context, baseURL string, options ...apiclient.Option) (*apiclient.Client, error) {
	ct, err := contract.Load(ctx)
	if err != nil {
		return nil, err
	}
	opts := append([]apiclient.Option{
		apiclient.WithBaseURL(baseURL),
		apiclient.WithContract(ct),
	}, options...)
	return apiclient.New(opts...)
}

// NewForm exposes the edit form constructor from the top-level module.
func NewForm(id string, api editform.API, options ...editform.Option) *Form {
	return editform.New(id, api, options...)
}

// LoadForm constructs a form and loads the record and reference options.
// The returned form is usable even when err is non-nil in degrade mode.
func LoadForm(ctx context.Context, id string, api editform.API, options ...editform.Option) (*Form, error) {
	form := editform.New(id, api, options...)
	return form, form.Load(ctx)
}

// Validate checks form values offline and returns the update body.
func Validate(values FormValues) (UpdatePayload, error) {
	return model.Validate(values)
}

// NewDashboard builds the browser dashboard around api.
func NewDashboard(api editform.API, variant string, options ...web.Option) (*web.Server, error) {
	return web.New(api, variant, options...)
}
