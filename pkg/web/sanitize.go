package web

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	inputPolicyOnce sync.Once
	inputPolicy     *bluemonday.Policy
)

// sanitizeInput strips markup from a posted value. bluemonday escapes the
// remaining text, which is undone so "A & B" survives as typed; templates
// escape again on output.
func sanitizeInput(raw string) string {
	if !strings.ContainsAny(raw, "<>&") {
		return raw
	}
	return html.UnescapeString(inputSanitizer().Sanitize(raw))
}

func inputSanitizer() *bluemonday.Policy {
	inputPolicyOnce.Do(func() {
		inputPolicy = bluemonday.StrictPolicy()
	})
	return inputPolicy
}
