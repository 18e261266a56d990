package recipe

import (
	"context"
	"sync"

	"meal-planner/internal/core/source"
	"meal-planner/internal/pkg/common"
)

// fakeCompleter scripts Structured responses for tests.
type fakeCompleter struct {
	mu    sync.Mutex
	calls int
	fn    func(system, user string, out interface{}) error
}

func (f *fakeCompleter) Structured(_ context.Context, system, user string, out interface{}) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(system, user, out)
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// respondWith returns a Structured stub that decodes canned JSON into out.
func respondWith(jsonBody string) func(string, string, interface{}) error {
	return func(_, _ string, out interface{}) error {
		return common.ParseJSON(jsonBody, out)
	}
}

// fakeSource scripts platform search results for tests.
type fakeSource struct {
	src     source.Source
	results map[string][]source.SearchResult // keyed by accountFilter, "" for general
	err     error
	panics  bool

	mu           sync.Mutex
	queries      []string
	accountCalls int
}

func (f *fakeSource) Source() source.Source { return f.src }

func (f *fakeSource) Search(_ context.Context, query string, _ int, accountFilter string) ([]source.SearchResult, error) {
	if f.panics {
		panic("search blew up")
	}

	f.mu.Lock()
	f.queries = append(f.queries, query)
	if accountFilter != "" {
		f.accountCalls++
	}
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return f.results[accountFilter], nil
}

func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) accountCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accountCalls
}

// queryAgnosticSource mimics platforms whose account search pages recent
// posts regardless of the query.
type queryAgnosticSource struct {
	*fakeSource
}

func (s *queryAgnosticSource) AccountSearchIgnoresQuery() bool { return true }
