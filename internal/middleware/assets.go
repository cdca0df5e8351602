package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
)

// Cache-Control values applied by StaticWithCache.
const (
	CacheAssets = "public, max-age=604800, stale-while-revalidate=86400"
	CacheNone   = "no-store"
)

// AssetsWithCache serves dir under /assets with long-lived caching and ETags.
func AssetsWithCache(dir string) http.Handler {
	return StaticWithCache(os.DirFS(dir), "/assets", CacheAssets)
}

// StaticWithCache wraps a file server over fsys, mounted at prefix, and
// applies Cache-Control, Vary and ETag handling. ETags are computed once at
// startup, so files added later are served without one.
func StaticWithCache(fsys fs.FS, prefix, cacheControl string) http.Handler {
	etags := map[string]string{}
	_ = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if et, err := fileETag(fsys, p); err == nil {
			etags["/"+p] = et
		}
		return nil
	})
	files := http.StripPrefix(prefix, http.FileServerFS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", cacheControl)
		if et := etags[strings.TrimPrefix(r.URL.Path, prefix)]; et != "" {
			w.Header().Set("ETag", et)
			if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

func fileETag(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}
