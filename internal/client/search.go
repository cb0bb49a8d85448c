package client

import (
	"sync"

	"storefront/internal/model"
)

// Search holds the last keyword and its results. It is never persisted.
type Search struct {
	mu      sync.RWMutex
	keyword string
	results []model.Product
}

// Set records a keyword with its results.
func (s *Search) Set(keyword string, results []model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyword = keyword
	s.results = results
}

// Keyword returns the last searched keyword.
func (s *Search) Keyword() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keyword
}

// Results returns the last results.
func (s *Search) Results() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Product(nil), s.results...)
}
