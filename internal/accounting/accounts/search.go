package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/odyssey-erp/ledger-console/internal/shared"
)

// SearchFunc runs one account search.
type SearchFunc func(ctx context.Context, query string) ([]Account, error)

// SearchResult is delivered for the latest query only.
type SearchResult struct {
	Query    string
	Accounts []Account
	Err      error
}

// LiveSearch debounces search input. A new input cancels both the pending
// timer and any request in flight. Results of superseded queries are dropped.
type LiveSearch struct {
	debouncer *shared.Debouncer
	search    SearchFunc
	deliver   func(SearchResult)

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	closed   bool
	inflight sync.WaitGroup
}

// NewLiveSearch builds a LiveSearch with the given quiet period.
func NewLiveSearch(quiet time.Duration, search SearchFunc, deliver func(SearchResult)) *LiveSearch {
	return &LiveSearch{debouncer: shared.NewDebouncer(quiet), search: search, deliver: deliver}
}

// Input records a new query and reschedules the search.
func (s *LiveSearch) Input(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.debouncer.Trigger(func() { s.run(seq, query) })
}

func (s *LiveSearch) run(seq uint64, query string) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()
	defer cancel()

	accounts, err := s.search(ctx, query)

	s.mu.Lock()
	current := !s.closed && seq == s.seq
	s.mu.Unlock()
	if !current || ctx.Err() != nil {
		return
	}
	s.deliver(SearchResult{Query: query, Accounts: accounts, Err: err})
}

// Cancel drops the pending search and any request in flight. Later input
// is still accepted.
func (s *LiveSearch) Cancel() {
	s.mu.Lock()
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.debouncer.Cancel()
}

// Close cancels the pending search and any request in flight, and waits
// for the running search to return.
func (s *LiveSearch) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.debouncer.Stop()
	s.inflight.Wait()
}

// Searches keeps one LiveSearch per browser session along with the last
// result it delivered.
type Searches struct {
	quiet time.Duration

	mu      sync.Mutex
	entries map[string]*searchEntry
}

type searchEntry struct {
	live *LiveSearch

	mu     sync.Mutex
	latest *SearchResult
}

// NewSearches builds an empty set of live searches sharing one quiet period.
func NewSearches(quiet time.Duration) *Searches {
	return &Searches{quiet: quiet, entries: make(map[string]*searchEntry)}
}

// Input feeds query to the live search of scope. search is bound when the
// scope is first seen and kept until Close.
func (s *Searches) Input(scope, query string, search SearchFunc) {
	s.mu.Lock()
	e, ok := s.entries[scope]
	if !ok {
		e = &searchEntry{}
		e.live = NewLiveSearch(s.quiet, search, e.store)
		s.entries[scope] = e
	}
	s.mu.Unlock()
	e.live.Input(query)
}

// Latest returns the last result delivered for scope.
func (s *Searches) Latest(scope string) (SearchResult, bool) {
	e := s.lookup(scope)
	if e == nil {
		return SearchResult{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.latest == nil {
		return SearchResult{}, false
	}
	return *e.latest, true
}

// Cancel drops pending work and the last result of scope.
func (s *Searches) Cancel(scope string) {
	e := s.lookup(scope)
	if e == nil {
		return
	}
	e.live.Cancel()
	e.mu.Lock()
	e.latest = nil
	e.mu.Unlock()
}

// Close tears down the live search of scope.
func (s *Searches) Close(scope string) {
	s.mu.Lock()
	e, ok := s.entries[scope]
	delete(s.entries, scope)
	s.mu.Unlock()
	if ok {
		e.live.Close()
	}
}

// Len returns the number of live searches.
func (s *Searches) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Searches) lookup(scope string) *searchEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[scope]
}

func (e *searchEntry) store(r SearchResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.latest = &r
}
