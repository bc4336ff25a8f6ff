package redis

const (
	// KeyPrefixBookmark is the prefix for bookmark keys
	KeyPrefixBookmark = "kompas:bookmark:"
	// KeySavedIndex is the sorted set of bookmark identifiers scored by SavedAt
	KeySavedIndex = "kompas:bookmarks:saved"
)

// BookmarkKey returns the Redis key for a bookmark
func BookmarkKey(identifier string) string {
	return KeyPrefixBookmark + identifier
}

// SavedIndexKey returns the key of the SavedAt-ordered identifier set
func SavedIndexKey() string {
	return KeySavedIndex
}
