package tiktok

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/alanbriolat/media-archiver"
	"github.com/alanbriolat/media-archiver/internal/fetchtest"
)

func queryEscape(s string) string {
	return url.QueryEscape(s)
}

func newTestProcessor(t *testing.T, fetcher *fetchtest.Fake) (*media_archiver.Processor, media_archiver.Config) {
	dir := t.TempDir()
	config := media_archiver.DefaultConfig()
	config.VideoDir = filepath.Join(dir, "videos")
	config.ImageDir = filepath.Join(dir, "images")
	config.BackupAPIURL = testAPIBase
	chain := NewConfig(fetcher, config).NewChain()
	retriever := media_archiver.NewRetriever(fetcher, config.RetrieverConfig())
	return media_archiver.NewProcessor(chain, retriever, media_archiver.NewSessionLedger(nil)), config
}

func TestChainOrder(t *testing.T) {
	assert := assert_.New(t)
	chain := Config{Fetcher: fetchtest.New()}.NewChain()
	assert.Equal([]string{MarkupStrategyName, BackupAPIStrategyName}, chain.List(media_archiver.MediaKindVideo))
	assert.Equal([]string{BackupAPIStrategyName}, chain.List(media_archiver.MediaKindPhotoSet))
}

func TestProcessVideoFallsBackToBackupAPI(t *testing.T) {
	assert := assert_.New(t)
	source := "https://vt.tiktok.com/ABCDEF/"
	fetcher := fetchtest.New().
		Respond(source, "<html><body>no rehydration data here</body></html>").
		Respond(apiURL(source), apiVideoJSON).
		Respond("https://cdn.example/play0.mp4", "mp4 data")
	p, config := newTestProcessor(t, fetcher)

	record := p.ProcessURL(context.Background(), source)
	assert.Equal(media_archiver.OutcomeStatusSuccess, record.Status, record.Details)
	assert.Equal(media_archiver.MediaKindVideo, record.MediaKind)
	assert.Equal(BackupAPIStrategyName, record.Strategy)

	summary := p.Ledger().Summary()
	if assert.Len(summary, 1) {
		assert.Equal(media_archiver.OutcomeStatusSuccess, summary[0].Status)
		assert.Equal(media_archiver.MediaKindVideo, summary[0].MediaKind)
	}
	data, err := os.ReadFile(filepath.Join(config.VideoDir, "ab_vid_05032024_7342000000000000123.mp4"))
	assert.NoError(err)
	assert.Equal("mp4 data", string(data))

	// Markup first, then the backup API, then the video itself with the source as Referer
	calls := fetcher.Calls()
	if assert.Len(calls, 3) {
		assert.Equal(source, calls[0].URL)
		assert.Equal(apiURL(source), calls[1].URL)
		assert.Equal("https://cdn.example/play0.mp4", calls[2].URL)
		assert.Equal(source, calls[2].Header.Get("Referer"))
	}
}

func TestProcessVideoMarkupSkipsBackupAPI(t *testing.T) {
	assert := assert_.New(t)
	source := "https://www.tiktok.com/@ab/video/7342000000000000123"
	fetcher := fetchtest.New().
		Respond(source, page(videoItemJSON)).
		Respond(apiURL(source), apiVideoJSON).
		Respond("https://v16.example/bitrate0.mp4", "markup mp4")
	p, config := newTestProcessor(t, fetcher)

	record := p.ProcessURL(context.Background(), source)
	assert.Equal(media_archiver.OutcomeStatusSuccess, record.Status, record.Details)
	assert.Equal(MarkupStrategyName, record.Strategy)
	assert.Equal(0, fetcher.CallsWithPrefix(testAPIBase))
	assert.FileExists(filepath.Join(config.VideoDir, "ab_vid_05032024_7342000000000000123.mp4"))
}

func TestProcessPhotoSetUsesOnlyBackupAPI(t *testing.T) {
	assert := assert_.New(t)
	source := "https://www.tiktok.com/@ab/photo/7342000000000000999"
	fetcher := fetchtest.New().
		Respond(apiURL(source), apiImageJSON).
		Respond("https://cdn.example/1.jpg", "1").
		Respond("https://cdn.example/2.jpg", "2").
		Respond("https://cdn.example/3.jpg", "3")
	p, config := newTestProcessor(t, fetcher)

	record := p.ProcessURL(context.Background(), source)
	assert.Equal(media_archiver.OutcomeStatusSuccess, record.Status, record.Details)
	assert.Equal(media_archiver.MediaKindPhotoSet, record.MediaKind)
	assert.Equal(0, fetcher.CallsWithPrefix(source))
	assert.Equal(1, fetcher.CallsWithPrefix(testAPIBase))
	for i := 1; i <= 3; i++ {
		assert.FileExists(filepath.Join(config.ImageDir, "ab_img_05032024_7342000000000000999_"+string(rune('0'+i))+".jpg"))
	}
}

func TestProcessVideoBothStrategiesFail(t *testing.T) {
	assert := assert_.New(t)
	source := "https://vt.tiktok.com/ABCDEF/"
	fetcher := fetchtest.New().
		Respond(source, "<html></html>").
		Respond(apiURL(source), `{"status": "error", "message": "rate limited"}`)
	p, _ := newTestProcessor(t, fetcher)

	record := p.ProcessURL(context.Background(), source)
	assert.Equal(media_archiver.OutcomeStatusFailed, record.Status)
	assert.Contains(record.Details, "rate limited")
	assert.Contains(record.Details, "[api]")
	assert.NotContains(record.Details, "[markup]")
	assert.NotContains(record.Details, "not applicable")
}
