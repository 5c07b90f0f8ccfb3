package media_archiver

import (
	"path/filepath"
	"time"
)

type Config struct {
	VideoDir string
	ImageDir string
	// BackupAPIURL is the endpoint of the backup API; the backup strategy fails if it is empty.
	BackupAPIURL string
	// BackupAPIParam is the query parameter that carries the source URL.
	BackupAPIParam string
	UserAgent      string
	// FetchTimeout bounds how long each fetch waits for response headers; zero means no timeout.
	FetchTimeout time.Duration
	// HistoryPath is a database file for outcome history; empty disables it.
	HistoryPath string
	// Strategy, if set, is the only resolution strategy attempted.
	Strategy string
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func DefaultConfig() Config {
	return Config{
		VideoDir:       filepath.Join("downloads", "videos"),
		ImageDir:       filepath.Join("downloads", "images"),
		BackupAPIParam: "url",
		UserAgent:      DefaultUserAgent,
		FetchTimeout:   2 * time.Minute,
	}
}

// RetrieverConfig derives the Retriever settings from c.
func (c Config) RetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		VideoDir: c.VideoDir,
		ImageDir: c.ImageDir,
		Naming:   NewNaming(),
	}
}
