package model

import "time"

// Options holds user-configurable runtime options as resolved from flags,
// environment and the config file.
type Options struct {
	OutDir       string
	Format       Format
	DLBinary     string // Optional explicit path to yt-dlp
	Verbose      bool
	Jobs         int // Max concurrent downloads; 0 = unbounded
	Retries      int // Extra attempts after a failed transfer
	RetryBackoff time.Duration
	CheckUpdates bool
	LogLevel     string
}
