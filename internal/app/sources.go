package app

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/registry"
)

// SourceManager maps registered external sources to the collections the
// last reload produced for them.
type SourceManager struct {
	store domain.SessionRepository

	mu      sync.RWMutex
	fetched map[string]domain.SourceCollection // source ID -> last result
	order   []string
}

func NewSourceManager(store domain.SessionRepository) *SourceManager {
	return &SourceManager{
		store:   store,
		fetched: make(map[string]domain.SourceCollection),
	}
}

// Track records the outcome of a reload. Earlier results are dropped.
func (sm *SourceManager) Track(results []domain.SourceCollection) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.fetched = make(map[string]domain.SourceCollection, len(results))
	sm.order = sm.order[:0]
	for _, r := range results {
		sm.fetched[r.Source.ID] = r
		sm.order = append(sm.order, r.Source.ID)
	}
}

// List returns the registered sources in registration order.
func (sm *SourceManager) List() []domain.ExternalSource {
	return sm.store.Sources()
}

// Add registers a source; it shows up after the next reload.
func (sm *SourceManager) Add(rawURL, name string) (domain.ExternalSource, error) {
	src, err := sm.store.AddSource(domain.ExternalSource{
		URL:     rawURL,
		Name:    name,
		Enabled: true,
	})
	if err != nil {
		logger.LogError("ADD_SOURCE", rawURL, err)
		return domain.ExternalSource{}, err
	}
	return src, nil
}

func (sm *SourceManager) Remove(id string) error {
	if err := sm.store.RemoveSource(id); err != nil {
		return err
	}

	sm.mu.Lock()
	delete(sm.fetched, id)
	for i, existing := range sm.order {
		if existing == id {
			sm.order = append(sm.order[:i], sm.order[i+1:]...)
			break
		}
	}
	sm.mu.Unlock()
	return nil
}

// Toggle flips whether a source is fetched and returns the new setting.
func (sm *SourceManager) Toggle(id string) (bool, error) {
	src, err := sm.Find(id)
	if err != nil {
		return false, err
	}
	if err := sm.store.SetSourceEnabled(src.ID, !src.Enabled); err != nil {
		return false, err
	}
	return !src.Enabled, nil
}

func (sm *SourceManager) SetEnabled(id string, enabled bool) error {
	src, err := sm.Find(id)
	if err != nil {
		return err
	}
	return sm.store.SetSourceEnabled(src.ID, enabled)
}

// Find resolves a source by id, by a unique id prefix or by URL.
func (sm *SourceManager) Find(ref string) (domain.ExternalSource, error) {
	ref = strings.TrimSpace(ref)
	var matches []domain.ExternalSource
	for _, src := range sm.store.Sources() {
		if src.ID == ref || strings.EqualFold(src.URL, ref) {
			return src, nil
		}
		if ref != "" && strings.HasPrefix(src.ID, ref) {
			matches = append(matches, src)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return domain.ExternalSource{}, fmt.Errorf("source id %q is ambiguous", ref)
	}
	return domain.ExternalSource{}, fmt.Errorf("source %q not found", ref)
}

// Result returns the last fetched collection for a source id.
func (sm *SourceManager) Result(id string) (domain.SourceCollection, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	r, ok := sm.fetched[id]
	return r, ok
}

// SourceForCork returns the collection an external cork came from.
func (sm *SourceManager) SourceForCork(cork domain.Cork) (domain.SourceCollection, bool) {
	if !cork.ThirdParty || cork.SourceID == "" {
		return domain.SourceCollection{}, false
	}
	return sm.Result(cork.SourceID)
}

// Label names a source for listings: the fetched manifest name when a
// reload has produced one, otherwise what the user registered.
func (sm *SourceManager) Label(src domain.ExternalSource) string {
	if r, ok := sm.Result(src.ID); ok && r.Name != "" {
		return r.Name
	}
	return registry.DisplayName(src, "")
}

// Failed counts sources whose last fetch failed.
func (sm *SourceManager) Failed() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	n := 0
	for _, r := range sm.fetched {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func (sm *SourceManager) FetchedCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.order)
}
