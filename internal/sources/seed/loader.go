// Package seed provides the starter set of bookmark categories loaded into
// an empty store, either from a user-supplied YAML file or from the
// built-in defaults.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of a bookmarks seed file.
type Loader struct {
	filePath string
}

// NewLoader creates a seed loader. An empty filePath means the built-in
// default set is used.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the seed file, or returns the built-in defaults
// when no file is configured.
func (l *Loader) Load() (Config, error) {
	if l.filePath == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return config, nil
}

// Defaults is the starter set shown on a fresh dashboard.
func Defaults() Config {
	return Config{Categories: []Category{
		{
			ID: "security-tools", Name: "Security Tools", Icon: "shield-alert",
			Bookmarks: []Bookmark{
				{ID: "st-1", Title: "Kali Linux", URL: "https://www.kali.org/", Color: "bg-blue-500"},
				{ID: "st-2", Title: "Metasploit", URL: "https://www.metasploit.com/", Color: "bg-red-500"},
				{ID: "st-3", Title: "Wireshark", URL: "https://www.wireshark.org/", Color: "bg-green-500"},
				{ID: "st-4", Title: "Burp Suite", URL: "https://portswigger.net/burp", Color: "bg-orange-500"},
				{ID: "st-5", Title: "OWASP", URL: "https://owasp.org/", Color: "bg-purple-500"},
				{ID: "st-6", Title: "Nmap", URL: "https://nmap.org/", Color: "bg-cyan-500"},
			},
		},
		{
			ID: "learning", Name: "Learning Resources", Icon: "book-open",
			Bookmarks: []Bookmark{
				{ID: "lr-1", Title: "TryHackMe", URL: "https://tryhackme.com/", Color: "bg-red-500"},
				{ID: "lr-2", Title: "HackTheBox", URL: "https://www.hackthebox.com/", Color: "bg-green-500"},
				{ID: "lr-3", Title: "Cybrary", URL: "https://www.cybrary.it/", Color: "bg-blue-500"},
				{ID: "lr-4", Title: "PortSwigger Academy", URL: "https://portswigger.net/web-security", Color: "bg-orange-500"},
				{ID: "lr-5", Title: "Hack The Box Academy", URL: "https://academy.hackthebox.com/", Color: "bg-green-500"},
			},
		},
		{
			ID: "news", Name: "Security News", Icon: "newspaper",
			Bookmarks: []Bookmark{
				{ID: "n-1", Title: "Krebs on Security", URL: "https://krebsonsecurity.com/", Color: "bg-red-500"},
				{ID: "n-2", Title: "The Hacker News", URL: "https://thehackernews.com/", Color: "bg-blue-500"},
				{ID: "n-3", Title: "Threatpost", URL: "https://threatpost.com/", Color: "bg-purple-500"},
				{ID: "n-4", Title: "Bleeping Computer", URL: "https://www.bleepingcomputer.com/", Color: "bg-cyan-500"},
			},
		},
		{
			ID: "coding", Name: "Coding Resources", Icon: "code",
			Bookmarks: []Bookmark{
				{ID: "c-1", Title: "GitHub", URL: "https://github.com/", Color: "bg-slate-500"},
				{ID: "c-2", Title: "Stack Overflow", URL: "https://stackoverflow.com/", Color: "bg-orange-500"},
				{ID: "c-3", Title: "MDN Web Docs", URL: "https://developer.mozilla.org/", Color: "bg-blue-500"},
				{ID: "c-4", Title: "W3Schools", URL: "https://www.w3schools.com/", Color: "bg-green-500"},
			},
		},
		{
			ID: "tools", Name: "Useful Tools", Icon: "wrench",
			Bookmarks: []Bookmark{
				{ID: "t-1", Title: "CyberChef", URL: "https://gchq.github.io/CyberChef/", Color: "bg-yellow-500"},
				{ID: "t-2", Title: "VirusTotal", URL: "https://www.virustotal.com/", Color: "bg-blue-500"},
				{ID: "t-3", Title: "Shodan", URL: "https://www.shodan.io/", Color: "bg-red-500"},
			},
		},
	}}
}
