// Package tiktok resolves TikTok URLs. Videos are read from the page's embedded rehydration data first, falling back
// to a backup API; photo sets only come from the backup API.
package tiktok

import (
	"github.com/alanbriolat/media-archiver"
	"github.com/alanbriolat/media-archiver/generic"
)

type Config struct {
	Fetcher        media_archiver.Fetcher
	BackupAPIURL   string
	BackupAPIParam string
}

func NewConfig(fetcher media_archiver.Fetcher, c media_archiver.Config) Config {
	return Config{
		Fetcher:        fetcher,
		BackupAPIURL:   c.BackupAPIURL,
		BackupAPIParam: c.BackupAPIParam,
	}
}

func (c Config) MarkupStrategy() media_archiver.Strategy {
	return media_archiver.Strategy{
		Name:     MarkupStrategyName,
		Kinds:    generic.NewSet(media_archiver.MediaKindVideo),
		Resolve:  c.resolveMarkup,
		Priority: media_archiver.PriorityDefault,
	}
}

func (c Config) BackupAPIStrategy() media_archiver.Strategy {
	return media_archiver.Strategy{
		Name:     BackupAPIStrategyName,
		Kinds:    generic.NewSet(media_archiver.MediaKindVideo, media_archiver.MediaKindPhotoSet),
		Resolve:  c.resolveBackupAPI,
		Priority: media_archiver.PriorityLowest,
	}
}

// Register adds both strategies to chain.
func (c Config) Register(chain *media_archiver.ResolutionChain) {
	chain.MustAdd(c.MarkupStrategy())
	chain.MustAdd(c.BackupAPIStrategy())
}

// NewChain is a ResolutionChain with both strategies registered.
func (c Config) NewChain() *media_archiver.ResolutionChain {
	chain := &media_archiver.ResolutionChain{}
	c.Register(chain)
	return chain
}
