package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const flashCookieName = "posyandu_flash"

// flashTTL bounds how long a toast survives waiting for the next page.
const flashTTL = 60 * time.Second

// Toast kinds.
const (
	ToastSuccess = "success"
	ToastError   = "error"
)

// Toast is one transient notification.
type Toast struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func setFlash(w http.ResponseWriter, toasts []Toast) {
	if len(toasts) == 0 {
		return
	}
	raw, err := json.Marshal(toasts)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   int(flashTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads and clears pending toasts.
func takeFlash(w http.ResponseWriter, r *http.Request) []Toast {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var toasts []Toast
	if err := json.Unmarshal(raw, &toasts); err != nil {
		return nil
	}
	return toasts
}

// feedback collects a controller's notifications and navigation for a single
// request. It implements editform.Notifier and editform.Navigator.
type feedback struct {
	mu       sync.Mutex
	toasts   []Toast
	redirect string
}

func (f *feedback) Success(msg string) { f.add(ToastSuccess, msg) }
func (f *feedback) Error(msg string)   { f.add(ToastError, msg) }

func (f *feedback) add(kind, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(f.toasts, Toast{Kind: kind, Text: msg})
}

func (f *feedback) Navigate(route string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redirect = route
}

func (f *feedback) result() ([]Toast, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Toast(nil), f.toasts...), f.redirect
}
