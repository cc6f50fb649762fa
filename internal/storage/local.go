package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/google/uuid"
)

const stateFile = "state.json"

var (
	ErrSourceNotFound = errors.New("source not found")
	ErrSourceExists   = errors.New("source already registered")
	ErrInvalidSource  = errors.New("invalid source url")
)

// LocalRepository persists the session state as a JSON file. When the
// file cannot be read or written it keeps working from memory for the
// rest of the process.
type LocalRepository struct {
	statePath  string
	state      *State
	persistent bool
	mu         sync.RWMutex
}

var _ domain.SessionRepository = (*LocalRepository)(nil)

func NewLocalRepository(dir string) *LocalRepository {
	repo := &LocalRepository{
		statePath:  filepath.Join(dir, stateFile),
		state:      &State{Sources: []domain.ExternalSource{}},
		persistent: true,
	}

	if err := repo.ensureDir(); err != nil {
		logger.LogError("STATE_DIR", dir, err)
		repo.persistent = false
	}

	if repo.persistent {
		if err := repo.load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			repo.persistent = false
		}
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, err := uuid.Parse(repo.state.SessionID); err != nil {
		repo.state.SessionID = uuid.NewString()
		logger.Log("Generated session id %s", repo.state.SessionID)
		repo.save()
	}

	return repo
}

// NewMemoryRepository returns a store that never touches disk.
func NewMemoryRepository() *LocalRepository {
	return &LocalRepository{
		state: &State{
			SessionID: uuid.NewString(),
			Sources:   []domain.ExternalSource{},
		},
	}
}

func (r *LocalRepository) ensureDir() error {
	return os.MkdirAll(filepath.Dir(r.statePath), 0700)
}

func (r *LocalRepository) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.LogFileOpen(r.statePath)
	data, err := os.ReadFile(r.statePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.LogError("LOAD", r.statePath, err)
		}
		return err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		// A corrupt file is replaced on the next save rather than
		// locking the user out of the client.
		logger.LogError("UNMARSHAL", r.statePath, err)
		return nil
	}
	if state.Sources == nil {
		state.Sources = []domain.ExternalSource{}
	}
	r.state = &state

	logger.Log("State loaded from %s (%d sources)", r.statePath, len(state.Sources))
	return nil
}

// save must be called with mu held.
func (r *LocalRepository) save() {
	if !r.persistent {
		return
	}

	data, err := json.MarshalIndent(r.state, "", "  ")
	if err != nil {
		logger.LogError("MARSHAL", r.statePath, err)
		return
	}

	logger.LogFileWrite(r.statePath)
	if err := os.WriteFile(r.statePath, data, 0600); err != nil {
		logger.LogError("SAVE", r.statePath, err)
		logger.Log("Session store is now memory-only")
		r.persistent = false
	}
}

// Persistent reports whether mutations still reach disk.
func (r *LocalRepository) Persistent() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.persistent
}

func (r *LocalRepository) Token() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Token
}

func (r *LocalRepository) SetToken(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Token = token
	r.save()
}

func (r *LocalRepository) ClearToken() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Token == "" {
		return
	}
	r.state.Token = ""
	logger.Log("Cleared access token")
	r.save()
}

func (r *LocalRepository) SessionID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.SessionID
}

// ResetSession issues a fresh session identifier and returns it.
func (r *LocalRepository) ResetSession() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SessionID = uuid.NewString()
	logger.Log("Session id rotated to %s", r.state.SessionID)
	r.save()
	return r.state.SessionID
}

func (r *LocalRepository) Sources() []domain.ExternalSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]domain.ExternalSource, len(r.state.Sources))
	copy(sources, r.state.Sources)
	return sources
}

// AddSource registers an external manifest. The id and timestamp are
// filled in when missing; a URL may be registered only once. An empty
// name is kept so the manifest's own name can be shown instead.
func (r *LocalRepository) AddSource(src domain.ExternalSource) (domain.ExternalSource, error) {
	src.URL = strings.TrimSpace(src.URL)
	u, err := url.Parse(src.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.ExternalSource{}, fmt.Errorf("%w: %q", ErrInvalidSource, src.URL)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.state.Sources {
		if strings.EqualFold(existing.URL, src.URL) {
			return domain.ExternalSource{}, fmt.Errorf("%w: %s", ErrSourceExists, src.URL)
		}
	}

	if src.ID == "" {
		src.ID = uuid.NewString()
	}
	if src.AddedAt.IsZero() {
		src.AddedAt = time.Now().UTC()
	}
	src.Name = strings.TrimSpace(src.Name)

	r.state.Sources = append(r.state.Sources, src)
	logger.Log("Added source %s", src.URL)
	r.save()
	return src, nil
}

func (r *LocalRepository) RemoveSource(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, src := range r.state.Sources {
		if src.ID == id {
			logger.Log("Removing source %s (%s)", src.Name, src.URL)
			r.state.Sources = append(r.state.Sources[:i], r.state.Sources[i+1:]...)
			r.save()
			return nil
		}
	}

	logger.LogError("REMOVE_SOURCE", id, ErrSourceNotFound)
	return fmt.Errorf("%w: %s", ErrSourceNotFound, id)
}

func (r *LocalRepository) SetSourceEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.state.Sources {
		if r.state.Sources[i].ID == id {
			r.state.Sources[i].Enabled = enabled
			r.save()
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrSourceNotFound, id)
}
