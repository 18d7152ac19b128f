// Package schema validates request payloads and model replies against the
// JSON Schemas embedded in this package.
package schema

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

// Schema names shipped with the service.
const (
	RepairIssue         = "repair_issue"
	HarassmentReport    = "harassment_report"
	ProfileUpdate       = "profile_update"
	ClassificationReply = "classification_reply"
)

//go:embed schemas/*.json
var embedded embed.FS

// FieldError is one violated constraint, keyed by the top-level field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Loader loads and caches compiled JSON schemas from a filesystem.
type Loader struct {
	fsys  fs.FS
	dir   string
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// NewLoader compiles every *.json file in dir of fsys. The schema name is the
// file name without extension.
func NewLoader(fsys fs.FS, dir string) (*Loader, error) {
	l := &Loader{
		fsys:  fsys,
		dir:   dir,
		cache: make(map[string]*jsonschema.Schema),
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}

	return l, nil
}

// Default returns a loader over the embedded schemas.
func Default() (*Loader, error) {
	return NewLoader(embedded, "schemas")
}

// GetSchema returns the compiled schema registered under name.
func (l *Loader) GetSchema(name string) (*jsonschema.Schema, bool) {
	l.mu.RLock()
	s, ok := l.cache[name]
	l.mu.RUnlock()

	return s, ok
}

// Reload recompiles all schemas from the filesystem.
func (l *Loader) Reload() error {
	entries, err := fs.ReadDir(l.fsys, l.dir)
	if err != nil {
		return fmt.Errorf("load schemas: %w", err)
	}

	newCache := make(map[string]*jsonschema.Schema)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := fs.ReadFile(l.fsys, path.Join(l.dir, e.Name()))
		if err != nil {
			return fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		newCache[strings.TrimSuffix(e.Name(), ".json")] = rs
	}

	l.mu.Lock()
	l.cache = newCache
	l.mu.Unlock()
	return nil
}

// Validate checks data against the named schema and returns every violation,
// sorted by field. A non-nil error means the schema is unknown or data is not
// valid JSON.
func (l *Loader) Validate(ctx context.Context, name string, data []byte) ([]FieldError, error) {
	s, ok := l.GetSchema(name)
	if !ok {
		return nil, fmt.Errorf("no schema named %q", name)
	}
	kerrs, err := s.ValidateBytes(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(kerrs) == 0 {
		return nil, nil
	}

	out := make([]FieldError, 0, len(kerrs))
	for _, ke := range kerrs {
		out = append(out, FieldError{Field: fieldOf(ke), Message: ke.Message})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out, nil
}

var requiredMsg = regexp.MustCompile(`^"([^"]+)" value is required`)

// fieldOf maps a key error to the top-level property it concerns. Required
// errors are reported on the parent object, so the name comes from the message.
func fieldOf(ke jsonschema.KeyError) string {
	p := strings.Trim(ke.PropertyPath, "/")
	if p != "" {
		if i := strings.IndexByte(p, '/'); i >= 0 {
			p = p[:i]
		}
		return p
	}
	if m := requiredMsg.FindStringSubmatch(ke.Message); m != nil {
		return m[1]
	}
	return "body"
}
