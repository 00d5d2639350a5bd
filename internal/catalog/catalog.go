package catalog

import (
	"sort"
	"strings"

	"artquiz-service/internal/domain"
)

// Catalog is a read-only ordered painting collection.
type Catalog struct {
	paintings []domain.Painting
	byID      map[string]int
}

// New copies paintings so later changes to the input slice do not leak in.
func New(paintings []domain.Painting) *Catalog {
	c := &Catalog{
		paintings: append([]domain.Painting(nil), paintings...),
		byID:      make(map[string]int, len(paintings)),
	}
	for i, p := range c.paintings {
		if _, ok := c.byID[p.ID]; !ok {
			c.byID[p.ID] = i
		}
	}
	return c
}

// Paintings returns a copy of all records in catalog order.
func (c *Catalog) Paintings() []domain.Painting {
	if c == nil {
		return nil
	}
	return append([]domain.Painting(nil), c.paintings...)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.paintings)
}

// Get looks a painting up by id.
func (c *Catalog) Get(id string) (domain.Painting, bool) {
	if c == nil {
		return domain.Painting{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return domain.Painting{}, false
	}
	return c.paintings[i], true
}

func (c *Catalog) ByPeriod(period domain.Period) []domain.Painting {
	return c.filter(func(p domain.Painting) bool { return p.Period == period })
}

func (c *Catalog) ByArtist(artist string) []domain.Painting {
	return c.filter(func(p domain.Painting) bool { return p.Artist == artist })
}

// Search matches query case-insensitively against title, artist and museum.
// An empty query returns everything.
func (c *Catalog) Search(query string) []domain.Painting {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Paintings()
	}
	return c.filter(func(p domain.Painting) bool {
		return strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Artist), q) ||
			strings.Contains(strings.ToLower(p.Museum), q)
	})
}

// Artists returns the distinct artist names, sorted.
func (c *Catalog) Artists() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, p := range c.paintings {
		seen[p.Artist] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// CountByPeriod reports how many paintings each period has.
func (c *Catalog) CountByPeriod() map[domain.Period]int {
	out := make(map[domain.Period]int)
	if c == nil {
		return out
	}
	for _, p := range c.paintings {
		out[p.Period]++
	}
	return out
}

func (c *Catalog) filter(keep func(domain.Painting) bool) []domain.Painting {
	if c == nil {
		return nil
	}
	var out []domain.Painting
	for _, p := range c.paintings {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
