package export

import (
	"context"
	"database/sql"
	"sort"

	"github.com/loomworks/seam/internal/store"
)

// mockStore is an in-memory store.Store for export tests.
type mockStore struct {
	analyses map[string]*store.Analysis
	fixes    map[string][]*store.Fix
}

var _ store.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		analyses: map[string]*store.Analysis{},
		fixes:    map[string][]*store.Fix{},
	}
}

func (m *mockStore) CreateAnalysis(_ context.Context, a *store.Analysis) error {
	m.analyses[a.ID] = a
	return nil
}

func (m *mockStore) GetAnalysis(_ context.Context, id string) (*store.Analysis, error) {
	a, ok := m.analyses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

func (m *mockStore) ListAnalyses(_ context.Context, _ store.AnalysisFilter) ([]*store.Analysis, int, error) {
	var out []*store.Analysis
	for _, a := range m.analyses {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *mockStore) DeleteAnalysis(_ context.Context, id string) error {
	if _, ok := m.analyses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.analyses, id)
	delete(m.fixes, id)
	return nil
}

func (m *mockStore) CreateFix(_ context.Context, f *store.Fix) error {
	m.fixes[f.AnalysisID] = append(m.fixes[f.AnalysisID], f)
	return nil
}

func (m *mockStore) ListFixes(_ context.Context, analysisID string) ([]*store.Fix, error) {
	return m.fixes[analysisID], nil
}

func (m *mockStore) GetStats(_ context.Context) (*store.Stats, error) {
	n := 0
	for _, fs := range m.fixes {
		n += len(fs)
	}
	return &store.Stats{Analyses: len(m.analyses), Fixes: n}, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
