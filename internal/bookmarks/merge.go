package bookmarks

import "github.com/opsdeck/opsdeck/internal/domain"

// MergeCategories combines the server's categories with the local set.
// Server entries come first and win on shared ids; bookmarks the server
// does not know about (offline creations awaiting sync) are appended to
// their category, and local-only categories are appended at the end.
func MergeCategories(api, local []*domain.Category) []*domain.Category {
	merged := make([]*domain.Category, 0, len(api)+len(local))
	seen := make(map[string]*domain.Category, len(api))

	for _, apiCat := range api {
		cat := apiCat.Clone()
		merged = append(merged, cat)
		seen[cat.ID] = cat
	}

	for _, localCat := range local {
		target, ok := seen[localCat.ID]
		if !ok {
			cat := localCat.Clone()
			merged = append(merged, cat)
			seen[cat.ID] = cat
			continue
		}

		known := make(map[string]bool, len(target.Bookmarks))
		for _, bm := range target.Bookmarks {
			known[bm.ID] = true
		}
		for _, bm := range localCat.Bookmarks {
			if !known[bm.ID] {
				cp := *bm
				target.Bookmarks = append(target.Bookmarks, &cp)
			}
		}
	}

	return merged
}
