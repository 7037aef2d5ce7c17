package product

import (
	"context"
	"strings"
	"testing"

	"github.com/kailas-cloud/discovery/internal/db"
)

// mockStore implements the consumer interface for tests over an in-memory key space.
type mockStore struct {
	docs      map[string]string
	scanErr   error
	multiErr  error
	multiSeen [][]string
	dupScan   bool
}

func (m *mockStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	raw, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}

func (m *mockStore) JSONGetMulti(_ context.Context, keys []string, _ string) ([][]byte, error) {
	m.multiSeen = append(m.multiSeen, keys)
	if m.multiErr != nil {
		return nil, m.multiErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if raw, ok := m.docs[k]; ok {
			out[i] = []byte(raw)
		}
	}
	return out, nil
}

func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
			if m.dupScan {
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}

func newTestRepo(t *testing.T, docs map[string]string) (*Repo, *mockStore) {
	t.Helper()
	s := &mockStore{docs: docs}
	return New(s, "discovery:", "products"), s
}
