// Package docstore stores JSON documents addressed by slash-separated paths,
// the shape the storefront's data has always had: products/{id},
// allOrders/{id}, users/{uid}/orders/{id} and so on.
package docstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"latthi-storefront/internal/domain"
)

// Document is one stored record.
type Document struct {
	Path      string
	Data      map[string]interface{}
	Version   int64
	UpdatedAt time.Time
}

// ID is the last path segment.
func (d Document) ID() string {
	return Base(d.Path)
}

// Write is one change inside a Commit.
//
// Data, when non-nil, replaces the document body. Fields are then applied on
// top; keys are slash-separated field paths ("refundRequest/status") and a
// nil value removes the field. Writing fields to a missing document creates it.
type Write struct {
	Path      string
	Data      map[string]interface{}
	Fields    map[string]interface{}
	Delete    bool
	IfVersion *int64
}

// Replace overwrites the document at path.
func Replace(path string, data map[string]interface{}) Write {
	if data == nil {
		data = map[string]interface{}{}
	}
	return Write{Path: path, Data: data}
}

// Patch sets individual fields, leaving the rest of the document alone.
func Patch(path string, fields map[string]interface{}) Write {
	return Write{Path: path, Fields: fields}
}

// Remove deletes the document at path.
func Remove(path string) Write {
	return Write{Path: path, Delete: true}
}

// Expect makes the write conditional on the stored version. Version 0 means
// the document must not exist yet.
func (w Write) Expect(version int64) Write {
	v := version
	w.IfVersion = &v
	return w
}

// Store is implemented by the Postgres, MongoDB and in-memory backends.
type Store interface {
	// Get returns domain.ErrNotFound when nothing is stored at path.
	Get(ctx context.Context, path string) (*Document, error)
	// List returns every document strictly below prefix, ordered by path.
	List(ctx context.Context, prefix string) ([]Document, error)
	// Commit applies all writes atomically. A failed precondition aborts the
	// whole batch with domain.ErrVersionConflict.
	Commit(ctx context.Context, writes ...Write) error
	Ping(ctx context.Context) error
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", domain.ErrInvalid)
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return fmt.Errorf("%w: malformed path %q", domain.ErrInvalid, path)
		}
	}
	return nil
}

func validateWrites(writes []Write) error {
	if len(writes) == 0 {
		return fmt.Errorf("%w: empty commit", domain.ErrInvalid)
	}
	for _, w := range writes {
		if err := validatePath(w.Path); err != nil {
			return err
		}
		if w.Delete && (w.Data != nil || len(w.Fields) > 0) {
			return fmt.Errorf("%w: delete of %s carries data", domain.ErrInvalid, w.Path)
		}
		if !w.Delete && w.Data == nil && len(w.Fields) == 0 {
			return fmt.Errorf("%w: write to %s has no data", domain.ErrInvalid, w.Path)
		}
	}
	return nil
}

// checkVersion enforces a write precondition against the stored state.
func checkVersion(w Write, exists bool, current int64) error {
	if w.IfVersion == nil {
		return nil
	}
	want := *w.IfVersion
	if want == 0 && !exists {
		return nil
	}
	if exists && current == want {
		return nil
	}
	return fmt.Errorf("%w: %s expected version %d", domain.ErrVersionConflict, w.Path, want)
}

// Paths lists the paths touched by a batch, in order, without duplicates.
func Paths(writes []Write) []string {
	seen := make(map[string]struct{}, len(writes))
	out := make([]string, 0, len(writes))
	for _, w := range writes {
		if _, ok := seen[w.Path]; ok {
			continue
		}
		seen[w.Path] = struct{}{}
		out = append(out, w.Path)
	}
	return out
}
