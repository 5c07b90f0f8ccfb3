package main

import (
	"github.com/schollz/progressbar/v3"

	"github.com/alanbriolat/media-archiver"
)

// progressDisplay shows one byte progress bar per file being downloaded.
type progressDisplay struct {
	bar *progressbar.ProgressBar
}

func (p *progressDisplay) forFile(filename string) media_archiver.ProgressFunc {
	p.finish()
	bar := progressbar.DefaultBytes(-1, filename)
	p.bar = bar
	var max int64
	return func(downloaded int64, expected int64) {
		if expected > 0 && expected != max {
			max = expected
			bar.ChangeMax64(max)
		}
		_ = bar.Set64(downloaded)
	}
}

func (p *progressDisplay) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
