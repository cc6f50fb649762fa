package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dreamswag/ci5dev/internal/domain"
)

// flexString accepts JSON strings and numbers; manifests in the wild
// write "ram" both ways.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

type wireAudit struct {
	AuditResult string `json:"audit_result"`
}

type wireEntry struct {
	Repo    string     `json:"repo"`
	Desc    string     `json:"desc"`
	RAM     flexString `json:"ram"`
	Install string     `json:"install"`
	Audit   *wireAudit `json:"audit"`
}

// wireCollection is a JSON object of entries decoded in document order.
type wireCollection struct {
	keys    []string
	entries map[string]wireEntry
}

func (w *wireCollection) UnmarshalJSON(b []byte) error {
	w.keys = nil
	w.entries = make(map[string]wireEntry)

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("collection must be an object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", keyTok)
		}

		var entry wireEntry
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("entry %q: %w", key, err)
		}
		if _, dup := w.entries[key]; !dup {
			w.keys = append(w.keys, key)
		}
		w.entries[key] = entry
	}

	_, err = dec.Token()
	return err
}

type wireManifest struct {
	Meta struct {
		SigningAuthority string `json:"signing_authority"`
	} `json:"meta"`
	Official  wireCollection `json:"official"`
	Community wireCollection `json:"community"`
	Cellar    wireCollection `json:"cellar"`
}

func parseAudit(a *wireAudit) domain.AuditResult {
	if a == nil {
		return domain.AuditUnknown
	}
	switch r := domain.AuditResult(strings.ToUpper(strings.TrimSpace(a.AuditResult))); r {
	case domain.AuditSafe, domain.AuditSuspicious, domain.AuditMalicious:
		return r
	}
	return domain.AuditUnknown
}

func (w wireCollection) toCollection() *domain.Collection {
	c := domain.NewCollection()
	for _, key := range w.keys {
		e := w.entries[key]
		c.Set(key, domain.Cork{
			Repo:           e.Repo,
			Description:    e.Desc,
			RAM:            string(e.RAM),
			Audit:          parseAudit(e.Audit),
			InstallCommand: e.Install,
		})
	}
	return c
}

// ParseManifest decodes the primary manifest document.
func ParseManifest(data []byte) (*domain.Registry, error) {
	var m wireManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	reg := domain.NewRegistry()
	reg.Meta.SigningAuthority = m.Meta.SigningAuthority
	reg.Official = m.Official.toCollection()
	reg.Community = m.Community.toCollection()
	reg.Cellar = m.Cellar.toCollection()
	return reg, nil
}
