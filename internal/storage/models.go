package storage

import "github.com/dreamswag/ci5dev/internal/domain"

// State is the on-disk layout of the session store. Key names are shared
// with other ci5 clients and must not change.
type State struct {
	Token     string                  `json:"gh_token,omitempty"`
	SessionID string                  `json:"ci5_session"`
	Sources   []domain.ExternalSource `json:"ci5_sources"`
}
