// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package shell

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/MKhiriev/field-crm/internal/logger"
)

//go:embed assets
var embedded embed.FS

// assetFiles is the fixed set of files making up the shell. Every one of
// them is listed in the offline manifest.
var assetFiles = []string{
	"index.html",
	"app.js",
	"sw.js",
	"styles.css",
	"icon.svg",
}

const (
	ManifestPath      = "/manifest.webmanifest"
	OfflineAssetsPath = "/offline-assets.json"
)

type asset struct {
	body        []byte
	contentType string
	etag        string
}

// OfflineAssets is the document served at [OfflineAssetsPath].
type OfflineAssets struct {
	Version string   `json:"version"`
	Assets  []string `json:"assets"`
}

// Manifest is the installable web app manifest.
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []ManifestIcon `json:"icons"`
}

type ManifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// Shell holds the loaded assets and serves them over HTTP.
type Shell struct {
	source fs.FS
	dir    string

	mu      sync.RWMutex
	assets  map[string]asset
	version string

	logger *logger.Logger
}

// New loads the shell from dir, or from the embedded assets when dir is
// empty.
func New(dir string, logger *logger.Logger) (*Shell, error) {
	var source fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "assets")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadingAssets, err)
		}
		source = sub
	} else {
		source = os.DirFS(dir)
	}

	return NewFromFS(source, dir, logger)
}

// NewFromFS loads the shell from source. dir is the directory source was
// opened from, empty when it is not backed by disk.
func NewFromFS(source fs.FS, dir string, logger *logger.Logger) (*Shell, error) {
	s := &Shell{source: source, dir: dir, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory the assets are read from, empty for embedded
// assets.
func (s *Shell) Dir() string {
	return s.dir
}

// Reload reads every asset again. On failure the previously loaded assets
// stay in place.
func (s *Shell) Reload() error {
	assets := make(map[string]asset, len(assetFiles))
	sum := sha256.New()

	for _, name := range assetFiles {
		body, err := fs.ReadFile(s.source, name)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrAssetMissing, name, err)
		}

		digest := sha256.Sum256(body)
		ctype := mime.TypeByExtension(path.Ext(name))
		if ctype == "" {
			ctype = http.DetectContentType(body)
		}
		assets[name] = asset{
			body:        body,
			contentType: ctype,
			etag:        `"` + hex.EncodeToString(digest[:8]) + `"`,
		}
		sum.Write(digest[:])
	}

	s.mu.Lock()
	s.assets = assets
	s.version = hex.EncodeToString(sum.Sum(nil)[:6])
	s.mu.Unlock()

	s.logger.Debug().Str("func", "shell.Reload").Str("version", s.Version()).Msg("shell assets loaded")
	return nil
}

// Version identifies the current asset set. It changes whenever any asset
// changes, which lets service workers drop stale caches.
func (s *Shell) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// OfflineAssets returns the URLs a service worker must cache for the UI to
// start offline.
func (s *Shell) OfflineAssets() OfflineAssets {
	urls := make([]string, 0, len(assetFiles)+2)
	urls = append(urls, "/")
	for _, name := range assetFiles {
		urls = append(urls, "/"+name)
	}
	urls = append(urls, ManifestPath)

	return OfflineAssets{Version: s.Version(), Assets: urls}
}

// WebManifest returns the installable app manifest.
func (s *Shell) WebManifest() Manifest {
	return Manifest{
		Name:            "Field CRM",
		ShortName:       "FieldCRM",
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#2e7d32",
		Icons: []ManifestIcon{
			{Src: "/icon.svg", Sizes: "any", Type: "image/svg+xml"},
		},
	}
}

// ServeHTTP serves the manifest, the offline asset list and the assets
// themselves. Unknown paths get index.html so client side routes work after
// a reload.
func (s *Shell) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case ManifestPath:
		s.writeJSON(w, "application/manifest+json", s.WebManifest())
		return
	case OfflineAssetsPath:
		w.Header().Set("Cache-Control", "no-cache")
		s.writeJSON(w, "application/json", s.OfflineAssets())
		return
	}

	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}

	s.mu.RLock()
	a, ok := s.assets[name]
	if !ok {
		a = s.assets["index.html"]
	}
	s.mu.RUnlock()

	w.Header().Set("ETag", a.etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == a.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", a.contentType)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(a.body)
	}
}

func (s *Shell) writeJSON(w http.ResponseWriter, contentType string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Err(err).Str("func", "shell.writeJSON").Msg("error encoding shell document")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
