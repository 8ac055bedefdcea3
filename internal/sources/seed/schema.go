package seed

// Config represents the top-level structure of a bookmarks seed file.
type Config struct {
	Categories []Category `yaml:"categories"`
}

// Category is one seeded category with its bookmarks.
type Category struct {
	ID        string     `yaml:"id,omitempty"`
	Name      string     `yaml:"name"`
	Icon      string     `yaml:"icon,omitempty"`
	Bookmarks []Bookmark `yaml:"bookmarks,omitempty"`
}

// Bookmark is one seeded bookmark entry.
type Bookmark struct {
	ID    string `yaml:"id,omitempty"`
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	Color string `yaml:"color,omitempty"`
	Icon  string `yaml:"icon,omitempty"`
}
