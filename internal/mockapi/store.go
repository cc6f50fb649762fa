package mockapi

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownChallenge = errors.New("unknown challenge")
	ErrExpiredChallenge = errors.New("challenge expired")
)

type challenge struct {
	sessionID string
	expires   time.Time
}

// Store keeps outstanding challenges and verified sessions in memory.
type Store struct {
	mu         sync.Mutex
	challenges map[string]challenge
	verified   map[string]string
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		challenges: make(map[string]challenge),
		verified:   make(map[string]string),
		now:        time.Now,
	}
}

func (s *Store) CreateChallenge(code, sessionID string, expires time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[code] = challenge{sessionID: sessionID, expires: expires}
}

// Complete answers a challenge as a device would and returns the hardware
// id now bound to the challenge's session.
func (s *Store) Complete(code, hwid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[code]
	if !ok {
		return "", ErrUnknownChallenge
	}
	delete(s.challenges, code)
	if s.now().After(c.expires) {
		return "", ErrExpiredChallenge
	}

	if hwid == "" {
		hwid = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	s.verified[c.sessionID] = hwid
	return hwid, nil
}

func (s *Store) Identity(sessionID string) (hwid string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hwid, ok = s.verified[sessionID]
	return hwid, ok
}

// PurgeExpired drops challenges past their expiry and returns how many
// were removed.
func (s *Store) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for code, c := range s.challenges {
		if now.After(c.expires) {
			delete(s.challenges, code)
			removed++
		}
	}
	return removed
}

func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}
