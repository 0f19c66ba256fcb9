// Package file loads content trees from JSON or YAML documents, read from
// the local filesystem or fetched over HTTP(S), and keeps terminal sessions
// as JSON files on disk.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/dto"
	"github.com/aretw0/arbor/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format identifies the document encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// maxDocumentSize bounds remote documents.
const maxDocumentSize = 8 << 20

// Loader implements ports.TreeLoader over a file path or URL.
type Loader struct {
	source string
	format Format
	client *http.Client
	logger *slog.Logger
}

// Option configures the Loader.
type Option func(*Loader)

// WithFormat forces the document encoding instead of guessing from the source.
func WithFormat(f Format) Option {
	return func(l *Loader) {
		l.format = f
	}
}

// WithHTTPClient sets the client used for remote sources.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a loader for the given source (path, file:// or http(s):// URL).
func New(source string, opts ...Option) *Loader {
	l := &Loader{
		source: source,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the configured location.
func (l *Loader) Source() string {
	return l.source
}

// Load reads and parses the document. Every failure wraps domain.ErrTreeLoad.
func (l *Loader) Load(ctx context.Context) (*domain.ContentTree, error) {
	data, detected, err := l.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTreeLoad, err)
	}

	format := l.format
	if format == FormatAuto {
		format = detected
	}

	tree, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrTreeLoad, l.source, err)
	}

	l.logger.Debug("content tree loaded", "source", l.source, "levels", tree.Len(), "root", tree.Root)
	return tree, nil
}

func (l *Loader) read(ctx context.Context) ([]byte, Format, error) {
	u, err := url.Parse(l.source)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return l.fetch(ctx, u)
	}

	p := l.source
	if err == nil && u.Scheme == "file" {
		p = u.Path
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, FormatAuto, err
	}
	return data, formatFromExt(filepath.Ext(p)), nil
}

func (l *Loader) fetch(ctx context.Context, u *url.URL) ([]byte, Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, FormatAuto, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, FormatAuto, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, FormatAuto, fmt.Errorf("fetch %s: unexpected status %s", u, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, FormatAuto, fmt.Errorf("fetch %s: %w", u, err)
	}

	format := formatFromExt(path.Ext(u.Path))
	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && strings.Contains(mediaType, "yaml") {
		format = FormatYAML
	}
	return data, format, nil
}

func formatFromExt(ext string) Format {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// Parse decodes a document in the given format. FormatAuto sniffs the first
// non-blank byte: '{' means JSON, anything else YAML.
func Parse(data []byte, format Format) (*domain.ContentTree, error) {
	if format == FormatAuto {
		format = FormatYAML
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
			format = FormatJSON
		}
	}

	raw := make(map[string]any)
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	doc, err := dto.Decode(raw)
	if err != nil {
		return nil, err
	}
	return doc.Tree(), nil
}
