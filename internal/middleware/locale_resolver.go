package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"finitefield.org/egypt-online-web/internal/i18n"
)

// Locale resolves the preferred language from ?hl=, the `hl` cookie or
// Accept-Language, in that order, and stores it in the request context.
// Responses vary on both inputs.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supported := bundle.Supported()
			lang := ""
			if q := strings.ToLower(r.URL.Query().Get("hl")); q != "" && slices.Contains(supported, q) {
				lang = q
				http.SetCookie(w, &http.Cookie{Name: "hl", Value: q, Path: "/", SameSite: http.SameSiteLaxMode})
			} else if c, err := r.Cookie("hl"); err == nil && slices.Contains(supported, strings.ToLower(c.Value)) {
				lang = strings.ToLower(c.Value)
			} else {
				lang = bundle.Resolve(r.Header.Get("Accept-Language"))
			}
			ctx := context.WithValue(r.Context(), ctxKeyLocaleFB, bundle.Fallback())
			ctx = context.WithValue(ctx, ctxKeyLocale, lang)
			w.Header().Set("Content-Language", lang)
			w.Header().Add("Vary", "Accept-Language")
			w.Header().Add("Vary", "Cookie")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Lang returns the resolved language, the bundle fallback, or "en".
func Lang(r *http.Request) string {
	if v, ok := r.Context().Value(ctxKeyLocale).(string); ok && v != "" {
		return v
	}
	if v, ok := r.Context().Value(ctxKeyLocaleFB).(string); ok && v != "" {
		return v
	}
	return "en"
}
