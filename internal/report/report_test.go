package report

import (
	"strings"
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/alanbriolat/media-archiver"
)

func TestTable(t *testing.T) {
	assert := assert_.New(t)
	records := []media_archiver.OutcomeRecord{
		{MediaKind: media_archiver.MediaKindVideo, MediaID: "123", Author: "ab", Status: media_archiver.OutcomeStatusSuccess, Details: "saved ab_vid_05032024_123.mp4"},
		{Status: media_archiver.OutcomeStatusFailed, Details: "invalid URL:\n\"x\" " + strings.Repeat("long ", 40)},
	}
	var b strings.Builder
	assert.NoError(Table(&b, records))
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if assert.Len(lines, 4) {
		assert.True(strings.HasPrefix(lines[0], "#"))
		assert.Contains(lines[1], "Video")
		assert.Contains(lines[1], "Success")
		assert.Contains(lines[2], "Unknown")
		assert.Contains(lines[2], "...")
		assert.Equal("2 processed, 1 succeeded, 1 failed", lines[3])
	}
}

func TestOutcome(t *testing.T) {
	assert := assert_.New(t)
	var b strings.Builder
	assert.NoError(Outcome(&b, media_archiver.OutcomeRecord{
		MediaKind: media_archiver.MediaKindPhotoSet, MediaID: "9", Author: "ab",
		Status: media_archiver.OutcomeStatusFailed, Details: "saved 1 of 3 files before failure",
	}))
	assert.Equal("[Failed] Photo 9 by ab: saved 1 of 3 files before failure\n", b.String())
}
