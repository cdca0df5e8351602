package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"finitefield.org/egypt-online-web/internal/i18n"
)

func TestStaticWithCacheETag(t *testing.T) {
	fsys := fstest.MapFS{"css/site.css": {Data: []byte("body{}")}}
	h := StaticWithCache(fsys, "/assets", CacheAssets)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, CacheAssets, rec.Header().Get("Cache-Control"))
	et := rec.Header().Get("ETag")
	require.NotEmpty(t, et)

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", et)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)
}

func TestLoggerRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zap.WarnLevel, entries[0].Level)
	require.EqualValues(t, http.StatusNotFound, entries[0].ContextMap()["status"])
	require.Equal(t, "/missing", entries[0].ContextMap()["path"])
	require.Positive(t, entries[0].ContextMap()["bytes"])
}

func TestLocalePrecedence(t *testing.T) {
	bundle, err := i18n.Load(fstest.MapFS{
		"locales/en.json": {Data: []byte(`{}`)},
		"locales/ar.json": {Data: []byte(`{}`)},
	}, "locales", "en", []string{"en", "ar"})
	require.NoError(t, err)

	var got string
	h := Locale(bundle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Lang(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/?hl=ar", nil)
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "ar", got)
	require.Equal(t, "ar", rec.Header().Get("Content-Language"))
	require.NotEmpty(t, rec.Result().Cookies())
	require.Equal(t, []string{"Accept-Language", "Cookie"}, rec.Header().Values("Vary"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "hl", Value: "ar"})
	req.Header.Set("Accept-Language", "en")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "ar", got)

	req = httptest.NewRequest(http.MethodGet, "/?hl=xx", nil)
	req.Header.Set("Accept-Language", "fr")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "en", got)
}

func TestLangDefault(t *testing.T) {
	require.Equal(t, "en", Lang(httptest.NewRequest(http.MethodGet, "/", nil)))
}
