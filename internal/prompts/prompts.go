// Package prompts resolves named prompt templates. Built-in defaults are
// embedded in the binary; a file named <name>.tmpl in the configured
// directory overrides the default of the same name.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"
	"text/template"
)

const extension = ".tmpl"

//go:embed defaults/*.tmpl
var defaults embed.FS

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// System looks up and renders named prompts.
type System interface {
	// Get returns the raw prompt text.
	Get(name string) (string, error)
	// Render executes the prompt as a template against data.
	Render(name string, data any) (string, error)
	// Names lists every resolvable prompt, sorted.
	Names() []string
}

type system struct {
	dir    fs.FS
	logger *slog.Logger

	mu        sync.Mutex
	templates map[string]*template.Template
}

// New creates a prompt System. An empty dir serves embedded defaults only;
// a dir that does not exist is logged and ignored.
func New(dir string, logger *slog.Logger) System {
	s := &system{
		logger:    logger.With("system", "prompts"),
		templates: make(map[string]*template.Template),
	}
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			s.dir = os.DirFS(dir)
		} else {
			s.logger.Warn("prompt override directory unavailable", "dir", dir)
		}
	}
	return s
}

func (s *system) Get(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if s.dir != nil {
		data, err := fs.ReadFile(s.dir, name+extension)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read prompt %s: %w", name, err)
		}
	}

	data, err := defaults.ReadFile("defaults/" + name + extension)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return string(data), nil
}

func (s *system) Render(name string, data any) (string, error) {
	tmpl, err := s.template(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (s *system) Names() []string {
	var names []string
	collect := func(fsys fs.FS, dir string) {
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != extension {
				continue
			}
			names = append(names, strings.TrimSuffix(e.Name(), extension))
		}
	}

	collect(defaults, "defaults")
	if s.dir != nil {
		collect(s.dir, ".")
	}

	slices.Sort(names)
	return slices.Compact(names)
}

func (s *system) template(name string) (*template.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tmpl, ok := s.templates[name]; ok {
		return tmpl, nil
	}

	text, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).
		Funcs(funcs).
		Option("missingkey=zero").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", name, err)
	}

	s.templates[name] = tmpl
	return tmpl, nil
}

var funcs = template.FuncMap{
	"join":    join,
	"default": defaultValue,
}

func join(items any, sep string) string {
	v := reflect.ValueOf(items)
	if !v.IsValid() || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
		return ""
	}
	parts := make([]string, v.Len())
	for i := range v.Len() {
		parts[i] = fmt.Sprint(v.Index(i).Interface())
	}
	return strings.Join(parts, sep)
}

// defaultValue returns fallback when v is nil, a nil pointer, or an empty
// string or collection.
func defaultValue(fallback, v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return fallback
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return fallback
		}
		return defaultValue(fallback, rv.Elem().Interface())
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		if rv.Len() == 0 {
			return fallback
		}
	}
	return v
}
