// Package web serves the posyandu dashboard pages: the edit form, the
// management tab shell and the API contract document.
package web

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-posyandu/pkg/contract"
	"github.com/goliatone/go-posyandu/pkg/editform"
	"github.com/goliatone/go-posyandu/pkg/messages"
	"github.com/goliatone/go-posyandu/pkg/model"
	"github.com/goliatone/go-posyandu/pkg/web/view"
)

// Messages resolves localized page texts.
type Messages interface {
	Text(key string) string
}

// Server wires the dashboard routes around an editform.API.
type Server struct {
	api           editform.API
	messages      Messages
	logger        *zap.Logger
	referenceMode editform.ReferenceMode
	themes        *Themes
	themeName     string
	themeVariant  string
	views         *view.Engine
	navbar        Navbar
	router        chi.Router
}

// New builds the server and its router. variant picks the theme variant,
// empty meaning the default palette.
func New(api editform.API, variant string, opts ...Option) (*Server, error) {
	if api == nil {
		return nil, errors.New("web: api is required")
	}
	s := &Server{
		api:          api,
		messages:     messages.MustLoad(messages.DefaultLocale),
		logger:       zap.NewNop(),
		navbar:       DefaultNavbar(),
		themeName:    ThemeName,
		themeVariant: variant,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.themes == nil {
		if s.themeVariant == "" {
			s.themeVariant = VariantDefault
		}
		themes, err := DefaultThemes(s.themeVariant)
		if err != nil {
			return nil, err
		}
		s.themes = themes
	}
	if s.views == nil {
		engine, err := defaultViews()
		if err != nil {
			return nil, err
		}
		s.views = engine
	}

	s.router = s.routes()
	return s, nil
}

func defaultViews() (*view.Engine, error) {
	return view.New(
		view.WithName("dashboard"),
		view.WithFS(TemplatesFS()),
		view.WithFilter("akreditasi_label", func(in any, _ any) (any, error) {
			s, _ := in.(string)
			return model.Akreditasi(s).Label(), nil
		}),
	)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("dashboard shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, TabBasePath+"/data-posyandu", http.StatusSeeOther)
	})
	r.Get("/api-docs/openapi.yaml", s.handleContract)
	r.Get("/assets/themes/{theme}/{file}", s.handleAsset)

	r.Route(TabBasePath, func(r chi.Router) {
		r.Get("/{tab}", s.handleTab)
		r.Get("/{id}/edit", s.handleEditPage)
		r.Post("/{id}/edit", s.handleEditSubmit)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleContract(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(contract.Document())
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.themeConfig()
	if err != nil || chi.URLParam(r, "theme") != cfg.Theme {
		http.NotFound(w, r)
		return
	}
	raw, err := fs.ReadFile(assetFS, "assets/"+chi.URLParam(r, "file"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(raw)
}

func (s *Server) handleTab(w http.ResponseWriter, r *http.Request) {
	tab, ok := FindTab(chi.URLParam(r, "tab"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	p, err := s.basePage(r, tab.Label)
	if err != nil {
		s.fail(w, err)
		return
	}
	p.Toasts = takeFlash(w, r)
	s.render(w, http.StatusOK, "tab", p)
}

func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	form, fb := s.newForm(chi.URLParam(r, "id"))
	defer form.Close()

	if err := form.Load(r.Context()); err != nil {
		s.logger.Warn("edit form load", zap.String("id", form.ID()), zap.Error(err))
	}
	if s.redirected(w, r, fb) {
		return
	}
	toasts, _ := fb.result()
	s.renderEdit(w, r, http.StatusOK, form, toasts)
}

func (s *Server) handleEditSubmit(w http.ResponseWriter, r *http.Request) {
	form, fb := s.newForm(chi.URLParam(r, "id"))
	defer form.Close()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("_action") == "cancel" {
		form.Cancel()
		s.redirected(w, r, fb)
		return
	}

	if err := form.Load(r.Context()); err != nil {
		s.logger.Warn("edit form load", zap.String("id", form.ID()), zap.Error(err))
	}
	if s.redirected(w, r, fb) {
		return
	}

	for _, field := range model.Fields() {
		if err := form.UpdateField(field, sanitizeInput(r.PostForm.Get(string(field)))); err != nil {
			s.fail(w, err)
			return
		}
	}

	err := form.Submit(r.Context())
	if s.redirected(w, r, fb) {
		return
	}
	status := http.StatusOK
	var verr *model.ValidationError
	var serr *editform.SubmitError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &serr) && serr.TimedOut():
		status = http.StatusGatewayTimeout
	case errors.As(err, &serr):
		status = http.StatusBadGateway
	case err != nil:
		s.fail(w, err)
		return
	}
	toasts, _ := fb.result()
	s.renderEdit(w, r, status, form, toasts)
}

func (s *Server) newForm(id string) (*editform.Controller, *feedback) {
	fb := &feedback{}
	form := editform.New(id, s.api,
		editform.WithNotifier(fb),
		editform.WithNavigator(fb),
		editform.WithMessages(s.messages),
		editform.WithLogger(s.logger),
		editform.WithReferenceMode(s.referenceMode),
	)
	return form, fb
}

// redirected turns a controller navigation into a flash plus 303.
func (s *Server) redirected(w http.ResponseWriter, r *http.Request, fb *feedback) bool {
	toasts, route := fb.result()
	if route == "" {
		return false
	}
	setFlash(w, toasts)
	http.Redirect(w, r, route, http.StatusSeeOther)
	return true
}

func (s *Server) themeConfig() (*theme.RendererConfig, error) {
	sel, err := s.themes.Select(s.themeName, s.themeVariant)
	if err != nil {
		return nil, err
	}
	return RendererConfig(sel), nil
}

func (s *Server) basePage(r *http.Request, title string) (page, error) {
	cfg, err := s.themeConfig()
	if err != nil {
		return page{}, err
	}
	return page{
		Title:  title,
		Theme:  newThemeView(cfg),
		Navbar: navbarFor(s.navbar, r.URL.Query().Get("menu")),
		Tabs:   Tabs(r.URL.Path),
		Path:   r.URL.Path,
	}, nil
}

func (s *Server) renderEdit(w http.ResponseWriter, r *http.Request, status int, form *editform.Controller, toasts []Toast) {
	p, err := s.basePage(r, s.messages.Text(messages.FormTitle))
	if err != nil {
		s.fail(w, err)
		return
	}
	p.Toasts = toasts
	p.Form = s.editForm(r, form.Snapshot(), form.ListRoute())
	s.render(w, status, "edit", p)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data page) {
	out, err := s.views.RenderString(name, data)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(out))
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("dashboard request failed", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) editForm(r *http.Request, snap editform.Snapshot, listRoute string) *formView {
	fv := &formView{
		Action:     r.URL.Path,
		CancelHref: listRoute,
		Cancel:     s.messages.Text(messages.FormCancel),
		Submit:     s.messages.Text(messages.FormUpdate),
		Updating:   s.messages.Text(messages.FormUpdating),
		Busy:       snap.Busy,
	}
	for _, f := range model.Fields() {
		value, _ := snap.Values.Get(f)
		switch f {
		case model.FieldKelurahanID:
			fv.Kelurahan = selectView{
				Name:        string(f),
				Label:       f.Label(),
				Placeholder: s.messages.Text(messages.FormSelectKelurahan),
				Value:       value,
				Free:        len(snap.Options) == 0,
			}
			for _, opt := range snap.Options {
				id := strconv.Itoa(opt.ID)
				fv.Kelurahan.Options = append(fv.Kelurahan.Options, optionView{
					Value: id, Label: opt.Nama, Selected: id == value,
				})
			}
		case model.FieldAkreditasi:
			fv.Akreditasi = selectView{
				Name:        string(f),
				Label:       f.Label(),
				Placeholder: s.messages.Text(messages.FormSelectAkreditasi),
				Value:       value,
			}
			for _, a := range model.AkreditasiValues() {
				fv.Akreditasi.Options = append(fv.Akreditasi.Options, optionView{
					Value: string(a), Label: a.Label(), Selected: string(a) == value,
				})
			}
		default:
			fv.Fields = append(fv.Fields, fieldView{
				Name:        string(f),
				Label:       f.Label(),
				Placeholder: f.Placeholder(),
				Value:       value,
			})
		}
	}
	return fv
}

type page struct {
	Title  string    `json:"title"`
	Path   string    `json:"path"`
	Theme  themeView `json:"theme"`
	Navbar Navbar    `json:"navbar"`
	Tabs   []Tab     `json:"tabs"`
	Toasts []Toast   `json:"toasts"`
	Form   *formView `json:"form,omitempty"`
}

type formView struct {
	Action     string      `json:"action"`
	CancelHref string      `json:"cancel_href"`
	Cancel     string      `json:"cancel"`
	Submit     string      `json:"submit"`
	Updating   string      `json:"updating"`
	Busy       bool        `json:"busy"`
	Fields     []fieldView `json:"fields"`
	Kelurahan  selectView  `json:"kelurahan"`
	Akreditasi selectView  `json:"akreditasi"`
}

type fieldView struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
}

type selectView struct {
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Placeholder string       `json:"placeholder"`
	Value       string       `json:"value"`
	Options     []optionView `json:"options"`
	// Free renders a text input when no reference options could be loaded.
	Free bool `json:"free"`
}

type optionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}
