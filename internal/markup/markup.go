package markup

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Store is the subset of the cache used to memoise rendered bodies.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
}

// Renderer turns user-written Markdown into sanitised HTML.
type Renderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
	store     Store
	ttl       time.Duration
}

// New creates a Renderer. store may be nil, in which case nothing is cached.
func New(store Store, ttl time.Duration) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	// UGCPolicy allows basic formatting like links, lists and emphasis
	// while stripping scripts, styles and event handlers.
	return &Renderer{
		md:        md,
		sanitizer: bluemonday.UGCPolicy(),
		store:     store,
		ttl:       ttl,
	}
}

// Render converts Markdown source to safe HTML. Results are cached by content hash,
// so an edited post never serves a stale body.
func (r *Renderer) Render(src string) (template.HTML, error) {
	sum := sha256.Sum256([]byte(src))
	key := "markup:" + hex.EncodeToString(sum[:])

	if r.store != nil {
		if cached, err := r.store.Get(key); err == nil && cached != nil {
			return template.HTML(cached), nil
		}
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	out := r.sanitizer.SanitizeBytes(buf.Bytes())

	if r.store != nil {
		// A failed cache write only costs a re-render next time.
		_ = r.store.Set(key, out, r.ttl)
	}
	return template.HTML(out), nil
}
