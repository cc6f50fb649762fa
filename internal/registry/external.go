package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/provider/common"
)

const (
	DefaultDescription = "No description provided"
	UnknownRAM         = "?"
)

var ErrUnsupportedShape = errors.New("external manifest must be an array or an object with a corks array")

type externalEntry struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Desc        string     `json:"desc"`
	RAM         flexString `json:"ram"`
	Install     string     `json:"install"`
	Author      string     `json:"author"`
	Repo        string     `json:"repo"`
	Audit       *wireAudit `json:"audit"`
}

// NormalizeExternal turns a third-party manifest into a collection.
// The returned name is the document's own name, if it has one.
func NormalizeExternal(data []byte, src domain.ExternalSource) (string, *domain.Collection, error) {
	data = bytes.TrimSpace(data)

	var entries []externalEntry
	var name string

	switch {
	case len(data) > 0 && data[0] == '[':
		if err := json.Unmarshal(data, &entries); err != nil {
			return "", nil, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
		}
	case len(data) > 0 && data[0] == '{':
		var doc struct {
			Name  string           `json:"name"`
			Corks *json.RawMessage `json:"corks"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return "", nil, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
		}
		if doc.Corks == nil {
			return "", nil, ErrUnsupportedShape
		}
		if err := json.Unmarshal(*doc.Corks, &entries); err != nil {
			return "", nil, fmt.Errorf("%w: corks: %v", ErrUnsupportedShape, err)
		}
		name = strings.TrimSpace(doc.Name)
	default:
		return "", nil, ErrUnsupportedShape
	}

	host := common.Host(src.URL)
	c := domain.NewCollection()
	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			id = strings.TrimSpace(e.Name)
		}
		if id == "" {
			continue
		}
		c.Set(id, normalizeEntry(id, e, src, host))
	}

	return name, c, nil
}

func normalizeEntry(id string, e externalEntry, src domain.ExternalSource, host string) domain.Cork {
	author := strings.TrimSpace(e.Author)
	if author == "" {
		author = host
	}

	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		desc = strings.TrimSpace(e.Desc)
	}
	if desc == "" {
		desc = DefaultDescription
	}

	ram := strings.TrimSpace(string(e.RAM))
	if ram == "" {
		ram = UnknownRAM
	}

	install := strings.TrimSpace(e.Install)
	if install == "" {
		install = fmt.Sprintf("ci5 install %s --source %s", id, src.URL)
	}

	repo := strings.TrimSpace(e.Repo)
	if repo == "" {
		repo = src.URL
	}

	return domain.Cork{
		Repo:           repo,
		Description:    desc,
		RAM:            ram,
		Audit:          parseAudit(e.Audit),
		InstallCommand: install,
		ThirdParty:     true,
		Author:         author,
		SourceID:       src.ID,
	}
}

// DisplayName picks the persisted name, then the document's, then the
// URL host.
func DisplayName(src domain.ExternalSource, documentName string) string {
	if n := strings.TrimSpace(src.Name); n != "" {
		return n
	}
	if documentName != "" {
		return documentName
	}
	if h := common.Host(src.URL); h != "" {
		return h
	}
	return src.URL
}
