// Package render projects a loaded registry into listings and detail
// panels. It never mutates the registry; the only state it keeps is the
// active view and the number of rows last displayed.
package render

import (
	"fmt"
	"strings"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/provider/common"
)

const (
	ViewOfficial  = "official"
	ViewCommunity = "community"
	ViewTop       = "top"
	ViewSearch    = "search"

	EmptySearch = "No corks found matching your search."
	EmptyView   = "No corks in this view."
	OfflineMode = "OFFLINE MODE"
)

// Audit status dots.
const (
	DotSafe    = "🟢"
	DotWarn    = "🟡"
	DotDanger  = "🔴"
	DotUnknown = "⚪"
)

type Tag struct {
	Text  string
	Color string
}

var (
	TagOfficial   = Tag{Text: "OFFICIAL SIGNED", Color: "#30d158"}
	TagCommunity  = Tag{Text: "COMMUNITY", Color: "#ff9f0a"}
	TagCellar     = Tag{Text: "CELLAR BUNDLE", Color: "#bf5af2"}
	TagThirdParty = Tag{Text: "THIRD-PARTY", Color: "#0a84ff"}
)

type Row struct {
	Key       string
	Icon      string
	RAM       string
	Dot       string
	Label     string
	Submitter string
	Category  domain.Category
	Cork      domain.Cork
}

type Listing struct {
	View   string
	Header string
	Rows   []Row
	// Empty is the message to show instead of the rows when there are none.
	Empty string
}

type Detail struct {
	Key            string
	Icon           string
	Title          string
	Description    string
	RAM            string
	InstallCommand string
	SourceURL      string
	Submitter      string
	Category       domain.Category
	Tag            Tag
	Cork           domain.Cork
}

// Renderer is owned by a single goroutine (the UI loop or a CLI command)
// and is not safe for concurrent use.
type Renderer struct {
	reg     *domain.Registry
	webBase string

	active string
	count  int
}

func NewRenderer(reg *domain.Registry, webBase string) *Renderer {
	if reg == nil {
		reg = domain.NewRegistry()
	}
	return &Renderer{
		reg:     reg,
		webBase: webBase,
		active:  ViewOfficial,
	}
}

// SetRegistry swaps in a freshly loaded registry. The active view is kept.
func (r *Renderer) SetRegistry(reg *domain.Registry) {
	if reg == nil {
		reg = domain.NewRegistry()
	}
	r.reg = reg
}

func (r *Renderer) Registry() *domain.Registry { return r.reg }

func (r *Renderer) Active() string { return r.active }

func (r *Renderer) Count() int { return r.count }

// Signer is the signing authority line shown in the header.
func (r *Renderer) Signer() string {
	if r.reg.Offline {
		return OfflineMode
	}
	return "AUTH: " + r.reg.Meta.SigningAuthority
}

// Views lists the selectable view ids: the built-in views followed by
// one per fetched external source.
func (r *Renderer) Views() []string {
	views := []string{ViewOfficial, ViewCommunity, ViewTop}
	for _, sc := range r.reg.Sources {
		views = append(views, sc.Source.ID)
	}
	return views
}

// ViewTitle names a view id for tabs and headers.
func (r *Renderer) ViewTitle(viewID string) string {
	switch viewID {
	case ViewOfficial:
		return "🃏 ci5-canon-corks"
	case ViewCommunity:
		return "🛸 Community Corks"
	case ViewTop:
		return "🌠 Top Rated"
	}
	if sc, ok := r.reg.Source(viewID); ok {
		return "🔗 " + sc.Name
	}
	return viewID
}

// Render lists one view. Unknown view ids render as an empty listing.
func (r *Renderer) Render(viewID string) Listing {
	listing := Listing{View: viewID, Header: r.ViewTitle(viewID)}

	switch viewID {
	case ViewOfficial:
		listing.Rows = r.rows(r.reg.Official, domain.CategoryOfficial)
	case ViewCommunity, ViewTop:
		// "top" has no ranking of its own yet and shows the community list.
		listing.Rows = r.rows(r.reg.Community, domain.CategoryCommunity)
	default:
		if sc, ok := r.reg.Source(viewID); ok {
			listing.Rows = r.rows(sc.Entries, domain.CategoryThirdParty)
			if sc.Err != nil {
				listing.Empty = fmt.Sprintf("Source unavailable: %s", common.ExtractErrorMessage(sc.Err))
			}
		}
	}

	if len(listing.Rows) == 0 && listing.Empty == "" {
		listing.Empty = EmptyView
	}

	r.active = viewID
	r.count = len(listing.Rows)
	return listing
}

// Search filters every collection by a case-insensitive substring of the
// key or description. An empty query renders the official view.
func (r *Renderer) Search(query string) Listing {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.Render(ViewOfficial)
	}

	needle := strings.ToLower(query)
	listing := Listing{
		View:   ViewSearch,
		Header: fmt.Sprintf("🔍 Search: %q", query),
	}

	for _, e := range r.searchable() {
		if strings.Contains(strings.ToLower(e.cork.Key), needle) ||
			strings.Contains(strings.ToLower(e.cork.Description), needle) {
			listing.Rows = append(listing.Rows, r.row(e.cork, e.category))
		}
	}
	if len(listing.Rows) == 0 {
		listing.Empty = EmptySearch
	}

	r.active = ViewSearch
	r.count = len(listing.Rows)
	return listing
}

type categorized struct {
	cork     domain.Cork
	category domain.Category
}

// searchable flattens official, community, cellar and the merged external
// entries; a later collection replaces an earlier entry with the same key
// but keeps its position.
func (r *Renderer) searchable() []categorized {
	var order []string
	byKey := make(map[string]categorized)

	add := func(c *domain.Collection, cat domain.Category) {
		for _, cork := range c.Entries() {
			if _, seen := byKey[cork.Key]; !seen {
				order = append(order, cork.Key)
			}
			byKey[cork.Key] = categorized{cork: cork, category: cat}
		}
	}
	add(r.reg.Official, domain.CategoryOfficial)
	add(r.reg.Community, domain.CategoryCommunity)
	add(r.reg.Cellar, domain.CategoryCellar)
	add(r.reg.Merged, domain.CategoryThirdParty)

	out := make([]categorized, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

func (r *Renderer) rows(c *domain.Collection, cat domain.Category) []Row {
	entries := c.Entries()
	rows := make([]Row, 0, len(entries))
	for _, cork := range entries {
		rows = append(rows, r.row(cork, cat))
	}
	return rows
}

func (r *Renderer) row(cork domain.Cork, cat domain.Category) Row {
	ram := cork.RAM
	if ram == "" {
		ram = "RAM?"
	}
	return Row{
		Key:       cork.Key,
		Icon:      Icon(cork.Key),
		RAM:       ram,
		Dot:       AuditDot(cork.Audit),
		Label:     Label(cat),
		Submitter: Submitter(cork),
		Category:  cat,
		Cork:      cork,
	}
}

// Lookup finds a key in official, community, cellar and then the merged
// external entries.
func (r *Renderer) Lookup(key string) (domain.Cork, domain.Category, bool) {
	for _, c := range []struct {
		coll *domain.Collection
		cat  domain.Category
	}{
		{r.reg.Official, domain.CategoryOfficial},
		{r.reg.Community, domain.CategoryCommunity},
		{r.reg.Cellar, domain.CategoryCellar},
		{r.reg.Merged, domain.CategoryThirdParty},
	} {
		if cork, ok := c.coll.Get(key); ok {
			return cork, c.cat, true
		}
	}
	return domain.Cork{}, "", false
}

// RenderDetail looks key up across the collections and builds its
// detail panel.
func (r *Renderer) RenderDetail(key string) (Detail, bool) {
	cork, cat, ok := r.Lookup(key)
	if !ok {
		return Detail{}, false
	}
	return r.detail(cork, cat), true
}

// RenderRow builds the detail panel for a listed row. The row keeps the
// collection it was listed from, since a key may exist in several.
func (r *Renderer) RenderRow(row Row) Detail {
	cork := row.Cork
	if cork.Key == "" {
		cork.Key = row.Key
	}
	cat := row.Category
	if cat == "" {
		cat = domain.CategoryCommunity
		if cork.ThirdParty {
			cat = domain.CategoryThirdParty
		}
	}
	return r.detail(cork, cat)
}

func (r *Renderer) detail(cork domain.Cork, cat domain.Category) Detail {
	ram := cork.RAM
	if ram == "" {
		ram = "Unknown"
	}
	install := cork.InstallCommand
	if install == "" {
		install = "ci5 install " + cork.Key
	}

	return Detail{
		Key:            cork.Key,
		Icon:           Icon(cork.Key),
		Title:          cork.Key,
		Description:    cork.Description,
		RAM:            ram,
		InstallCommand: install,
		SourceURL:      common.RepositoryURL(r.webBase, cork.Repo),
		Submitter:      Submitter(cork),
		Category:       cat,
		Tag:            CategoryTag(cat),
		Cork:           cork,
	}
}

func AuditDot(a domain.AuditResult) string {
	switch a {
	case domain.AuditSafe:
		return DotSafe
	case domain.AuditSuspicious:
		return DotWarn
	case domain.AuditMalicious:
		return DotDanger
	default:
		return DotUnknown
	}
}

func Label(cat domain.Category) string {
	switch cat {
	case domain.CategoryOfficial:
		return "Signed"
	case domain.CategoryCellar:
		return "Cellar"
	case domain.CategoryThirdParty:
		return "Third-party"
	default:
		return "Community"
	}
}

func CategoryTag(cat domain.Category) Tag {
	switch cat {
	case domain.CategoryOfficial:
		return TagOfficial
	case domain.CategoryCellar:
		return TagCellar
	case domain.CategoryThirdParty:
		return TagThirdParty
	default:
		return TagCommunity
	}
}

// Submitter is the entry author for third-party corks and the repository
// owner otherwise.
func Submitter(cork domain.Cork) string {
	if cork.ThirdParty && cork.Author != "" {
		return cork.Author
	}
	return common.RepositoryOwner(cork.Repo)
}
