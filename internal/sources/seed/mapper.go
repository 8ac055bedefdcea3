package seed

import (
	"fmt"
	"strings"

	"github.com/opsdeck/opsdeck/internal/domain"
)

// Mapper converts seed entries to domain entities.
type Mapper struct{}

// NewMapper creates a new mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapCategories converts a seed Config to domain categories. Entries without
// a title or url are skipped; urls without a scheme are normalized. Missing
// ids are derived from the name so re-seeding stays idempotent.
func (m *Mapper) MapCategories(config Config) ([]*domain.Category, error) {
	var categories []*domain.Category

	for _, sc := range config.Categories {
		if strings.TrimSpace(sc.Name) == "" {
			continue
		}
		catID := sc.ID
		if catID == "" {
			catID = slugify(sc.Name)
		}

		cat := &domain.Category{
			ID:   catID,
			Name: sc.Name,
			Icon: domain.NormalizeIcon(sc.Icon),
		}

		for i, sb := range sc.Bookmarks {
			if strings.TrimSpace(sb.Title) == "" || strings.TrimSpace(sb.URL) == "" {
				continue
			}
			bmID := sb.ID
			if bmID == "" {
				bmID = fmt.Sprintf("%s-%d", catID, i+1)
			}
			cat.Bookmarks = append(cat.Bookmarks, &domain.Bookmark{
				ID:         bmID,
				Title:      sb.Title,
				URL:        domain.NormalizeURL(sb.URL),
				Color:      sb.Color,
				Icon:       sb.Icon,
				CategoryID: catID,
			})
		}

		categories = append(categories, cat)
	}

	if len(categories) == 0 {
		return nil, fmt.Errorf("no valid categories found in seed config")
	}

	return categories, nil
}

// slugify turns "Security News" into "security-news".
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
