package editform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-posyandu/pkg/apiclient"
	"github.com/goliatone/go-posyandu/pkg/messages"
	"github.com/goliatone/go-posyandu/pkg/model"
)

type stubAPI struct {
	mu sync.Mutex

	record    model.Posyandu
	getErr    error
	options   []model.KelurahanOption
	listErr   error
	updateErr error

	// updateStarted and updateGate let tests hold an update in flight.
	updateStarted chan struct{}
	updateGate    chan struct{}

	getCalls    int
	listCalls   int
	updateCalls int
	payloads    []model.UpdatePayload
}

func (s *stubAPI) GetPosyandu(_ context.Context, id string) (model.Posyandu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	return s.record, s.getErr
}

func (s *stubAPI) ListKelurahan(context.Context) ([]model.KelurahanOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return s.options, s.listErr
}

func (s *stubAPI) UpdatePosyandu(_ context.Context, _ string, payload model.UpdatePayload) error {
	s.mu.Lock()
	s.updateCalls++
	s.payloads = append(s.payloads, payload)
	started, gate, err := s.updateStarted, s.updateGate, s.updateErr
	s.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}
	return err
}

func (s *stubAPI) updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateCalls
}

type recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
	routes    []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *recorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func num(s string) *json.Number {
	n := json.Number(s)
	return &n
}

func str(s string) *string { return &s }

func melati() model.Posyandu {
	return model.Posyandu{
		ID:              json.RawMessage("5"),
		Nama:            str("Posyandu Melati"),
		Alamat:          str("Jl. Mawar"),
		Wilayah:         str("RW01"),
		KelurahanID:     num("3"),
		PenanggungJawab: str("Aisyah"),
		NoHP:            str("0812"),
		Akreditasi:      str("MADYA"),
		Longitude:       num("107.6"),
		Latitude:        num("-6.9"),
	}
}

func kelurahan() []model.KelurahanOption {
	return []model.KelurahanOption{
		{ID: 1, Nama: "Sukajadi"},
		{ID: 3, Nama: "Cipedes"},
		{ID: 7, Nama: "Pasteur"},
	}
}

func newLoaded(t *testing.T, api *stubAPI, opts ...Option) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithNotifier(rec), WithNavigator(rec)}, opts...)
	c := New("5", api, opts...)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c, rec
}

func idText(key string) string {
	return messages.MustLoad("id").Text(key)
}

func TestLoad_PopulatesScenarioRecord(t *testing.T) {
	api := &stubAPI{record: melati(), options: kelurahan()}
	c, rec := newLoaded(t, api)

	want := model.FormValues{
		Nama:            "Posyandu Melati",
		Alamat:          "Jl. Mawar",
		Wilayah:         "RW01",
		KelurahanID:     "3",
		PenanggungJawab: "Aisyah",
		NoHP:            "0812",
		Akreditasi:      "MADYA",
		Longitude:       "107.6",
		Latitude:        "-6.9",
	}
	if diff := cmp.Diff(want, c.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if c.State() != StatePopulated {
		t.Fatalf("expected populated state, got %s", c.State())
	}
	selected, ok := c.SelectedOption()
	if !ok || selected.ID != 3 {
		t.Fatalf("expected option 3 selected, got %+v (ok=%v)", selected, ok)
	}
	if len(rec.errors) != 0 || len(rec.routes) != 0 {
		t.Fatalf("unexpected side effects: %+v", rec)
	}
	if api.getCalls != 1 || api.listCalls != 1 {
		t.Fatalf("expected one fetch each, got get=%d list=%d", api.getCalls, api.listCalls)
	}
}

func TestLoad_MissingFieldsBecomeEmpty(t *testing.T) {
	api := &stubAPI{record: model.Posyandu{ID: json.RawMessage("9"), Nama: str("Anggrek")}, options: kelurahan()}
	c, _ := newLoaded(t, api)

	got := c.Values()
	if got.Nama != "Anggrek" || got.Alamat != "" || got.Longitude != "" || got.KelurahanID != "" {
		t.Fatalf("unexpected values: %+v", got)
	}
	if _, ok := c.SelectedOption(); ok {
		t.Fatalf("no option should be selected for an empty kelurahan id")
	}
}

func TestLoad_EntityFailureAborts(t *testing.T) {
	api := &stubAPI{getErr: &apiclient.StatusError{Method: "GET", URL: "/api/posyandu/5", Code: 404}}
	rec := &recorder{}
	c := New("5", api, WithNotifier(rec), WithNavigator(rec))

	err := c.Load(context.Background())
	var loadErr *LoadError
	if !errors.As(err, &loadErr) || loadErr.Reference {
		t.Fatalf("expected entity LoadError, got %v", err)
	}
	if !apiclient.IsNotFound(err) {
		t.Fatalf("expected wrapped status error, got %v", err)
	}
	if c.State() != StateAborted {
		t.Fatalf("expected aborted, got %s", c.State())
	}
	if diff := cmp.Diff([]string{idText(messages.LoadFailed)}, rec.errors); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{DefaultListRoute}, rec.routes); diff != "" {
		t.Fatalf("navigation mismatch (-want +got):\n%s", diff)
	}
	if api.listCalls != 0 {
		t.Fatalf("options must not be fetched after entity failure")
	}
}

func TestLoad_ReferenceFailureAbortsByDefault(t *testing.T) {
	api := &stubAPI{record: melati(), listErr: errors.New("boom")}
	rec := &recorder{}
	c := New("5", api, WithNotifier(rec), WithNavigator(rec))

	err := c.Load(context.Background())
	var loadErr *LoadError
	if !errors.As(err, &loadErr) || !loadErr.Reference {
		t.Fatalf("expected reference LoadError, got %v", err)
	}
	if c.State() != StateAborted {
		t.Fatalf("expected aborted, got %s", c.State())
	}
	if len(rec.routes) != 1 || rec.routes[0] != DefaultListRoute {
		t.Fatalf("expected navigation to list, got %v", rec.routes)
	}
	if err := c.UpdateField(model.FieldNama, "x"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("aborted form must reject edits, got %v", err)
	}
}

func TestLoad_ReferenceFailureDegrades(t *testing.T) {
	api := &stubAPI{record: melati(), listErr: errors.New("boom")}
	rec := &recorder{}
	c := New("5", api, WithNotifier(rec), WithNavigator(rec), WithReferenceMode(ReferenceDegrade))

	err := c.Load(context.Background())
	var loadErr *LoadError
	if !errors.As(err, &loadErr) || !loadErr.Reference {
		t.Fatalf("expected reference LoadError, got %v", err)
	}
	if c.State() != StatePopulated {
		t.Fatalf("degraded form should stay populated, got %s", c.State())
	}
	if len(c.Options()) != 0 {
		t.Fatalf("expected empty options")
	}
	if len(rec.routes) != 0 {
		t.Fatalf("degraded form must not navigate, got %v", rec.routes)
	}
	if diff := cmp.Diff([]string{idText(messages.ReferenceFailed)}, rec.errors); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("degraded form should still submit: %v", err)
	}
}

func TestLoad_OnlyOnce(t *testing.T) {
	api := &stubAPI{record: melati(), options: kelurahan()}
	c, _ := newLoaded(t, api)
	if err := c.LoadEntity(context.Background()); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected second load to be rejected, got %v", err)
	}
	if api.getCalls != 1 {
		t.Fatalf("entity fetched %d times", api.getCalls)
	}
}

func TestUpdateField(t *testing.T) {
	api := &stubAPI{record: melati(), options: kelurahan()}
	c, _ := newLoaded(t, api)

	if err := c.UpdateField(model.FieldKelurahanID, "7"); err != nil {
		t.Fatalf("update field: %v", err)
	}
	if c.State() != StateEditing {
		t.Fatalf("expected editing, got %s", c.State())
	}
	if opt, ok := c.SelectedOption(); !ok || opt.Nama != "Pasteur" {
		t.Fatalf("expected Pasteur selected, got %+v", opt)
	}
	if err := c.UpdateField(model.Field("bogus"), "x"); !errors.Is(err, model.ErrUnknownField) {
		t.Fatalf("expected unknown field error, got %v", err)
	}

	empty := New("1", api)
	if err := empty.UpdateField(model.FieldNama, "x"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("unloaded form must reject edits, got %v", err)
	}
}

func TestSubmit_ValidationNeverCallsAPI(t *testing.T) {
	cases := []struct {
		name  string
		field model.Field
		value string
		kind  model.ValidationKind
		text  string
	}{
		{"empty nama", model.FieldNama, "", model.RequiredFieldMissing, messages.ValidationRequired},
		{"empty latitude", model.FieldLatitude, "", model.RequiredFieldMissing, messages.ValidationRequired},
		{"longitude text", model.FieldLongitude, "not-a-number", model.NotANumber, messages.ValidationNotANumber},
		{"latitude text", model.FieldLatitude, "abc", model.NotANumber, messages.ValidationNotANumber},
		{"kelurahan text", model.FieldKelurahanID, "tiga", model.InvalidReference, messages.ValidationInvalidReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &stubAPI{record: melati(), options: kelurahan()}
			c, rec := newLoaded(t, api)
			if err := c.UpdateField(tc.field, tc.value); err != nil {
				t.Fatalf("update field: %v", err)
			}
			before := c.Values()

			err := c.Submit(context.Background())
			if !model.IsValidationKind(err, tc.kind) {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
			if api.updates() != 0 {
				t.Fatalf("update endpoint called %d times", api.updates())
			}
			if diff := cmp.Diff([]string{idText(tc.text)}, rec.errors); diff != "" {
				t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(before, c.Values()); diff != "" {
				t.Fatalf("values changed (-want +got):\n%s", diff)
			}
			if c.State() != StateEditing || c.Busy() {
				t.Fatalf("form should stay editable and idle, got %s busy=%v", c.State(), c.Busy())
			}
		})
	}
}

func TestSubmit_SuccessNotifiesAndNavigatesOnce(t *testing.T) {
	api := &stubAPI{record: melati(), options: kelurahan()}
	c, rec := newLoaded(t, api)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := model.UpdatePayload{
		Nama:            "Posyandu Melati",
		Alamat:          "Jl. Mawar",
		Wilayah:         "RW01",
		KelurahanID:     3,
		PenanggungJawab: "Aisyah",
		NoHP:            "0812",
		Akreditasi:      "MADYA",
		Longitude:       107.6,
		Latitude:        -6.9,
	}
	if diff := cmp.Diff([]model.UpdatePayload{want}, api.payloads); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{idText(messages.SubmitSuccess)}, rec.successes); diff != "" {
		t.Fatalf("success notifications mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{DefaultListRoute}, rec.routes); diff != "" {
		t.Fatalf("navigation mismatch (-want +got):\n%s", diff)
	}
	if c.State() != StateDone || c.Busy() {
		t.Fatalf("expected done and idle, got %s busy=%v", c.State(), c.Busy())
	}
	if err := c.Submit(context.Background()); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("done form must reject resubmit, got %v", err)
	}
}

func TestSubmit_FailureKeepsValues(t *testing.T) {
	api := &stubAPI{
		record:    melati(),
		options:   kelurahan(),
		updateErr: &apiclient.StatusError{Method: "PUT", URL: "/api/posyandu/5", Code: 500},
	}
	c, rec := newLoaded(t, api)
	if err := c.UpdateField(model.FieldAlamat, "Jl. Kenanga"); err != nil {
		t.Fatalf("update field: %v", err)
	}
	before := c.Values()

	err := c.Submit(context.Background())
	var subErr *SubmitError
	if !errors.As(err, &subErr) || subErr.TimedOut() {
		t.Fatalf("expected non-timeout SubmitError, got %v", err)
	}
	if diff := cmp.Diff(before, c.Values()); diff != "" {
		t.Fatalf("values changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{idText(messages.SubmitFailed)}, rec.errors); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
	if len(rec.routes) != 0 || len(rec.successes) != 0 {
		t.Fatalf("failure must not navigate or report success: %+v", rec)
	}
	if c.Busy() || c.State() != StateEditing {
		t.Fatalf("expected idle editing form, got %s busy=%v", c.State(), c.Busy())
	}

	api.mu.Lock()
	api.updateErr = nil
	api.mu.Unlock()
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if api.updates() != 2 {
		t.Fatalf("expected two update calls, got %d", api.updates())
	}
}

func TestSubmit_TimeoutUsesTimeoutMessage(t *testing.T) {
	api := &stubAPI{
		record:    melati(),
		options:   kelurahan(),
		updateErr: fmt.Errorf("%w: PUT /api/posyandu/5", apiclient.ErrTimedOut),
	}
	c, rec := newLoaded(t, api)

	err := c.Submit(context.Background())
	var subErr *SubmitError
	if !errors.As(err, &subErr) || !subErr.TimedOut() {
		t.Fatalf("expected timed out SubmitError, got %v", err)
	}
	if diff := cmp.Diff([]string{idText(messages.SubmitTimedOut)}, rec.errors); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_BusyRejectsSecondSubmit(t *testing.T) {
	api := &stubAPI{
		record:        melati(),
		options:       kelurahan(),
		updateStarted: make(chan struct{}),
		updateGate:    make(chan struct{}),
	}
	c, rec := newLoaded(t, api)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-api.updateStarted

	if !c.Busy() || c.State() != StateSubmitting {
		t.Fatalf("expected busy submitting form, got %s busy=%v", c.State(), c.Busy())
	}
	if err := c.Submit(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := c.UpdateField(model.FieldNama, "x"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("edits during submit must be rejected, got %v", err)
	}

	close(api.updateGate)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if c.Busy() {
		t.Fatalf("busy flag should be cleared")
	}
	if api.updates() != 1 || len(rec.successes) != 1 {
		t.Fatalf("expected a single update and notification, got %d/%d", api.updates(), len(rec.successes))
	}
}

func TestClose_DiscardsLateResult(t *testing.T) {
	api := &stubAPI{
		record:        melati(),
		options:       kelurahan(),
		updateStarted: make(chan struct{}),
		updateGate:    make(chan struct{}),
	}
	c, rec := newLoaded(t, api)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-api.updateStarted
	c.Close()
	close(api.updateGate)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if c.Busy() {
		t.Fatalf("busy flag should be cleared even after close")
	}
	if len(rec.successes) != 0 || len(rec.routes) != 0 {
		t.Fatalf("closed form must not notify or navigate: %+v", rec)
	}
}

func TestSubmit_ConcurrentCallsUpdateOnce(t *testing.T) {
	for i := 0; i < 50; i++ {
		api := &stubAPI{record: melati(), options: kelurahan()}
		c, rec := newLoaded(t, api)

		const callers = 8
		errs := make(chan error, callers)
		var start sync.WaitGroup
		start.Add(1)
		for j := 0; j < callers; j++ {
			go func() {
				start.Wait()
				errs <- c.Submit(context.Background())
			}()
		}
		start.Done()

		var ok int
		for j := 0; j < callers; j++ {
			err := <-errs
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrBusy), errors.Is(err, ErrNotEditable):
			default:
				t.Fatalf("unexpected submit error: %v", err)
			}
		}
		if ok != 1 || api.updates() != 1 {
			t.Fatalf("expected exactly one update, got %d successes and %d calls", ok, api.updates())
		}
		rec.mu.Lock()
		routes := len(rec.routes)
		rec.mu.Unlock()
		if routes != 1 {
			t.Fatalf("expected one navigation, got %d", routes)
		}
	}
}

func TestSubmit_AfterCloseOrDoneIsRejected(t *testing.T) {
	api := &stubAPI{record: melati(), options: kelurahan()}
	c, _ := newLoaded(t, api)
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := c.Submit(context.Background()); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable after done, got %v", err)
	}

	closed, _ := newLoaded(t, &stubAPI{record: melati(), options: kelurahan()})
	closed.Close()
	if err := closed.Submit(context.Background()); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable after close, got %v", err)
	}
	if api.updates() != 1 {
		t.Fatalf("expected a single update, got %d", api.updates())
	}
}

func TestCancel_NavigatesToList(t *testing.T) {
	api := &stubAPI{record: melati(), options: kelurahan()}
	c, rec := newLoaded(t, api, WithListRoute("/custom/list"))

	c.Cancel()
	if diff := cmp.Diff([]string{"/custom/list"}, rec.routes); diff != "" {
		t.Fatalf("navigation mismatch (-want +got):\n%s", diff)
	}
	if err := c.Submit(context.Background()); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("cancelled form must reject submit, got %v", err)
	}
	if api.updates() != 0 {
		t.Fatalf("cancel must not send updates")
	}
}

func TestWithMessages_English(t *testing.T) {
	api := &stubAPI{record: melati(), options: kelurahan()}
	c, rec := newLoaded(t, api, WithMessages(messages.MustLoad("en")))
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if want := messages.MustLoad("en").Text(messages.SubmitSuccess); rec.successes[0] != want {
		t.Fatalf("expected %q, got %q", want, rec.successes[0])
	}
}

func TestSnapshot(t *testing.T) {
	api := &stubAPI{record: melati(), options: kelurahan()}
	c, _ := newLoaded(t, api)

	snap := c.Snapshot()
	if snap.ID != "5" || snap.State != StatePopulated || snap.Busy {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
	if snap.Selected == nil || snap.Selected.ID != 3 {
		t.Fatalf("expected selected option 3, got %+v", snap.Selected)
	}
	snap.Options[0].Nama = "mutated"
	if c.Options()[0].Nama != "Sukajadi" {
		t.Fatalf("snapshot options must be a copy")
	}
}

func TestStateString(t *testing.T) {
	if StateSubmitting.String() != "submitting" || State(42).String() != "state(42)" {
		t.Fatalf("unexpected state names")
	}
	if ReferenceDegrade.String() != "degrade" || ReferenceAbort.String() != "abort" {
		t.Fatalf("unexpected reference mode names")
	}
}
