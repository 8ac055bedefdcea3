package deps

import (
	"time"

	"github.com/opsdeck/opsdeck/internal/bookmarks"
	"github.com/opsdeck/opsdeck/internal/logger"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	Bookmarks    *bookmarks.Service
	AllowedCIDRS []string // IPs allowed to access the API; empty = no filter
	TrustProxy   bool     // true when running behind a trusted reverse proxy
}
