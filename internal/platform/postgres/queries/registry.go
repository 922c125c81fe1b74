// Package queries loads the application's named SQL statements.
//
// Statements live in the embedded .sql files in this directory. Each one is
// introduced by a marker line:
//
//	-- name: session.get
//	SELECT ...
//
// Full-line comments and a trailing semicolon are stripped from each body.
// A Registry is built once at startup and shared read-only by every store.
package queries

import (
	"bufio"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

const nameMarker = "-- name:"

// Registry maps statement names to SQL text. It is immutable after Load and
// safe for concurrent use.
type Registry struct {
	queries map[string]string
}

// Default loads the statements embedded in the binary.
func Default() (*Registry, error) {
	return Load(files)
}

// Load parses every *.sql file at the root of fsys.
func Load(fsys fs.FS) (*Registry, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list query files: %w", err)
	}
	sort.Strings(names)

	r := &Registry{queries: make(map[string]string)}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := r.parse(path.Base(name), string(data)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) parse(file, content string) error {
	var (
		current string
		body    strings.Builder
	)

	flush := func() error {
		if current == "" {
			return nil
		}
		sql := strings.TrimSuffix(strings.TrimSpace(body.String()), ";")
		if sql == "" {
			return fmt.Errorf("%s: query %q has an empty body", file, current)
		}
		if _, exists := r.queries[current]; exists {
			return fmt.Errorf("%s: query %q defined more than once", file, current)
		}
		r.queries[current] = sql
		body.Reset()
		return nil
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, nameMarker) {
			if err := flush(); err != nil {
				return err
			}
			current = strings.TrimSpace(strings.TrimPrefix(trimmed, nameMarker))
			if current == "" {
				return fmt.Errorf("%s: query marker without a name", file)
			}
			continue
		}
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		if current == "" {
			if trimmed != "" {
				return fmt.Errorf("%s: SQL before the first query marker", file)
			}
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return flush()
}

// Get returns the named statement.
func (r *Registry) Get(name string) (string, bool) {
	q, ok := r.queries[name]
	return q, ok
}

// MustGet returns the named statement and panics if it does not exist.
// Stores call it with compile-time constant names, so a miss is a
// programming error caught by the registry tests.
func (r *Registry) MustGet(name string) string {
	q, ok := r.queries[name]
	if !ok {
		panic(fmt.Sprintf("queries: unknown statement %q", name))
	}
	return q
}

// Require reports the first of names that is missing.
func (r *Registry) Require(names ...string) error {
	for _, name := range names {
		if _, ok := r.queries[name]; !ok {
			return fmt.Errorf("queries: unknown statement %q", name)
		}
	}
	return nil
}

// Names returns every statement name in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.queries))
	for name := range r.queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
