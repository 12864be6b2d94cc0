package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"latthi-storefront/internal/domain"
)

type memRecord struct {
	data      map[string]interface{}
	version   int64
	updatedAt time.Time
}

// Memory is an in-process Store used by tests and the memory driver.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]memRecord
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]memRecord),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Get(_ context.Context, path string) (*Document, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	m.mu.RLock()
	rec, ok := m.docs[path]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec.document(path)
}

func (m *Memory) List(_ context.Context, prefix string) ([]Document, error) {
	if err := validatePath(prefix); err != nil {
		return nil, err
	}
	want := prefix + "/"

	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0)
	for p := range m.docs {
		if strings.HasPrefix(p, want) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	out := make([]Document, 0, len(paths))
	for _, p := range paths {
		doc, err := m.docs[p].document(p)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (m *Memory) Commit(_ context.Context, writes ...Write) error {
	if err := validateWrites(writes); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Stage every write first so a failed precondition leaves nothing behind.
	staged := make(map[string]*memRecord, len(writes))
	lookup := func(path string) (memRecord, bool) {
		if rec, ok := staged[path]; ok {
			if rec == nil {
				return memRecord{}, false
			}
			return *rec, true
		}
		rec, ok := m.docs[path]
		return rec, ok
	}

	now := m.now()
	for _, w := range writes {
		cur, exists := lookup(w.Path)
		if err := checkVersion(w, exists, cur.version); err != nil {
			return err
		}
		if w.Delete {
			staged[w.Path] = nil
			continue
		}
		body, err := applyWrite(cur.data, w)
		if err != nil {
			return err
		}
		staged[w.Path] = &memRecord{data: body, version: cur.version + 1, updatedAt: now}
	}

	for path, rec := range staged {
		if rec == nil {
			delete(m.docs, path)
			continue
		}
		m.docs[path] = *rec
	}
	return nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (r memRecord) document(path string) (*Document, error) {
	data, err := normalize(r.data)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Data: data, Version: r.version, UpdatedAt: r.updatedAt}, nil
}
