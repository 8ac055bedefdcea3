package redis

const (
	// KeyPrefixCategory is the prefix for category hashes.
	KeyPrefixCategory = "opsdeck:category:"
	// KeyPrefixBookmark is the prefix for bookmark hashes.
	KeyPrefixBookmark = "opsdeck:bookmark:"
	// KeyCategoryOrder is the list of category IDs in display order.
	KeyCategoryOrder = "opsdeck:categories:order"
	// KeyBookmarkOrder is the list of bookmark IDs in display order.
	KeyBookmarkOrder = "opsdeck:bookmarks:order"
	// KeyLastSync holds the last successful sync time in unix milliseconds.
	KeyLastSync = "opsdeck:sync:last"
)

// CategoryKey returns the Redis key for a category by ID.
func CategoryKey(id string) string {
	return KeyPrefixCategory + id
}

// BookmarkKey returns the Redis key for a bookmark by ID.
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}
