package usecase

import (
	"sync"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

// runCache holds per-run memoization shared across workers. Only successful
// responses are stored; a failed call is retried by whichever file needs the
// answer next.
type runCache struct {
	mu      sync.Mutex
	lookups map[string]domain.PatientLookupResult
	docs    map[int64][]domain.StoredDocument
}

func newRunCache() *runCache {
	return &runCache{
		lookups: make(map[string]domain.PatientLookupResult),
		docs:    make(map[int64][]domain.StoredDocument),
	}
}

func (c *runCache) lookup(key string) (domain.PatientLookupResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.lookups[key]
	return result, ok
}

func (c *runCache) storeLookup(key string, result domain.PatientLookupResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups[key] = result
}

func (c *runCache) documents(patientID int64) ([]domain.StoredDocument, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	docs, ok := c.docs[patientID]
	return docs, ok
}

func (c *runCache) storeDocuments(patientID int64, docs []domain.StoredDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[patientID] = docs
}
