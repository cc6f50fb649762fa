package domain

type SessionRepository interface {
	Token() string

	SetToken(token string)

	ClearToken()

	SessionID() string

	ResetSession() string

	Sources() []ExternalSource

	AddSource(src ExternalSource) (ExternalSource, error)

	RemoveSource(id string) error

	SetSourceEnabled(id string, enabled bool) error
}
