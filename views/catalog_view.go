// File: views/catalog_view.go
package views

import (
	"strconv"

	"ctf-catalog/models"
	"golang.org/x/net/html"
)

// Element ids and classes the catalog page relies on.
const (
	GridID          = "ctf-grid"
	CardIDPrefix    = "ctf-card-"
	StatNumberClass = "stat-number"
)

// EmptyCatalogMessage is shown instead of an empty grid.
const EmptyCatalogMessage = "No CTF collections available yet."

// CardID is the element id of a collection's card.
func CardID(collectionID int) string {
	return CardIDPrefix + strconv.Itoa(collectionID)
}

// CatalogCard builds one summary card.
func CatalogCard(c models.Collection) *html.Node {
	year := models.DefaultYear
	if c.Year != nil && *c.Year != 0 {
		year = strconv.Itoa(*c.Year)
	}

	tags := El("div", []Attr{A("class", "difficulty-tags")})
	for _, d := range models.Difficulties {
		if n := len(c.Challenges.Bucket(d)); n > 0 {
			tags.AppendChild(El("span", []Attr{A("class", "difficulty-badge "+string(d))},
				strconv.Itoa(n)+" "+d.Label()))
		}
	}

	return El("div", []Attr{
		A("class", "ctf-card"),
		A("id", CardID(c.ID)),
		A("data-role", "card"),
		A("data-ctf-id", strconv.Itoa(c.ID)),
	},
		El("div", []Attr{A("class", "ctf-header")},
			El("h3", nil, c.Title),
			StatusBadge("", c.Status),
		),
		El("p", []Attr{A("class", "ctf-description")}, c.Description),
		El("div", []Attr{A("class", "ctf-stats")},
			El("div", []Attr{A("class", "stat")},
				El("span", []Attr{A("class", "stat-icon")}, "🎯"),
				El("span", nil, strconv.Itoa(c.TotalChallenges)+" Challenges"),
			),
			El("div", []Attr{A("class", "stat")},
				El("span", []Attr{A("class", "stat-icon")}, "📅"),
				El("span", nil, year),
			),
		),
		El("div", []Attr{A("class", "ctf-footer")}, tags),
	)
}

// StatusBadge renders a status pill; id may be empty.
func StatusBadge(id string, s models.Status) *html.Node {
	attrs := []Attr{A("class", "status-badge "+string(s))}
	if id != "" {
		attrs = append(attrs, A("id", id))
	}
	return El("span", attrs, string(s))
}

// EmptyCatalogPlaceholder is the single node shown for an empty catalog.
func EmptyCatalogPlaceholder() *html.Node {
	return El("p", []Attr{A("class", "grid-placeholder")}, EmptyCatalogMessage)
}

// CatalogCards builds the grid contents: one card per collection in source order,
// or exactly one placeholder when there are none.
func CatalogCards(cat *models.Catalog) []*html.Node {
	if cat == nil || len(cat.Collections) == 0 {
		return []*html.Node{EmptyCatalogPlaceholder()}
	}
	cards := make([]*html.Node, 0, len(cat.Collections))
	for _, c := range cat.Collections {
		cards = append(cards, CatalogCard(c))
	}
	return cards
}

// RenderGrid clears grid and rebuilds it from cat.
func RenderGrid(m Mutator, grid *html.Node, cat *models.Catalog) {
	m.SetChildren(grid, CatalogCards(cat)...)
}

// ErrorPanel is shown in the grid when intake failed.
func ErrorPanel(message string) *html.Node {
	return El("div", []Attr{A("class", "grid-error")},
		El("p", []Attr{A("class", "error-message")}, "⚠️ "+message))
}

// ApplyHeroStats sets the target of the first and third hero counters to the total
// challenge count and the collection count. Missing counters are skipped.
func ApplyHeroStats(m Mutator, doc *html.Node, totalChallenges, collections int) {
	counters := FindAllByClass(doc, StatNumberClass)
	if len(counters) > 0 {
		m.SetAttr(counters[0], "data-count", strconv.Itoa(totalChallenges))
	}
	if len(counters) > 2 {
		m.SetAttr(counters[2], "data-count", strconv.Itoa(collections))
	}
}
