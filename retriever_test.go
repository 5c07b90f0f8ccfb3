package media_archiver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/alanbriolat/media-archiver/internal/fetchtest"
)

func newTestRetriever(t *testing.T, fetcher Fetcher) (*Retriever, RetrieverConfig) {
	dir := t.TempDir()
	config := RetrieverConfig{
		VideoDir: filepath.Join(dir, "videos"),
		ImageDir: filepath.Join(dir, "images"),
		Naming:   NewNaming(),
	}
	return NewRetriever(fetcher, config), config
}

func listDir(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRetrieveVideo(t *testing.T) {
	assert := assert_.New(t)
	fetcher := fetchtest.New().Respond(testVideo.PlaybackURL, "video bytes")
	r, config := newTestRetriever(t, fetcher)

	result, err := r.Retrieve(context.Background(), testVideo, "https://vt.tiktok.com/ABCDEF/")
	assert.NoError(err)
	if assert.NotNil(result) {
		assert.Equal([]string{filepath.Join(config.VideoDir, "ab_vid_05032024_123.mp4")}, result.SavedPaths)
		assert.Equal([]int64{11}, result.ByteCounts)
		assert.Equal(int64(11), result.TotalBytes())
	}
	data, err := os.ReadFile(filepath.Join(config.VideoDir, "ab_vid_05032024_123.mp4"))
	assert.NoError(err)
	assert.Equal("video bytes", string(data))

	calls := fetcher.Calls()
	if assert.Len(calls, 1) {
		assert.Equal("https://vt.tiktok.com/ABCDEF/", calls[0].Header.Get("Referer"))
	}
}

func TestRetrieveVideoOverwrites(t *testing.T) {
	assert := assert_.New(t)
	fetcher := fetchtest.New().Respond(testVideo.PlaybackURL, "first version, longer")
	r, config := newTestRetriever(t, fetcher)

	_, err := r.Retrieve(context.Background(), testVideo, "")
	assert.NoError(err)
	fetcher.Respond(testVideo.PlaybackURL, "second")
	_, err = r.Retrieve(context.Background(), testVideo, "")
	assert.NoError(err)

	assert.Equal([]string{"ab_vid_05032024_123.mp4"}, listDir(t, config.VideoDir))
	data, _ := os.ReadFile(filepath.Join(config.VideoDir, "ab_vid_05032024_123.mp4"))
	assert.Equal("second", string(data))
}

func TestRetrieveVideoFailure(t *testing.T) {
	assert := assert_.New(t)
	fetcher := fetchtest.New().Fail(testVideo.PlaybackURL, errors.New("connection reset"))
	r, config := newTestRetriever(t, fetcher)

	result, err := r.Retrieve(context.Background(), testVideo, "")
	assert.Nil(result)
	assert.ErrorIs(err, ErrRetrievalFailed)
	assert.Contains(err.Error(), "connection reset")
	assert.Empty(listDir(t, config.VideoDir))
}

func TestRetrievePhotoSet(t *testing.T) {
	assert := assert_.New(t)
	fetcher := fetchtest.New().
		Respond("https://cdn.example/1.jpg", "one").
		Respond("https://cdn.example/2.jpg", "two!").
		Respond("https://cdn.example/3.jpg", "three")
	r, config := newTestRetriever(t, fetcher)
	var progressFiles []string
	r.config.OnProgress = func(filename string) ProgressFunc {
		progressFiles = append(progressFiles, filename)
		return func(downloaded int64, expected int64) {}
	}

	d := PhotoSetDescriptor{
		AuthorID:  "ab",
		SetID:     "9",
		Created:   UnixTime(1709596800),
		ImageURLs: []string{"https://cdn.example/1.jpg", "https://cdn.example/2.jpg", "https://cdn.example/3.jpg"},
	}
	result, err := r.Retrieve(context.Background(), d, "https://www.tiktok.com/@ab/photo/9")
	assert.NoError(err)
	if assert.NotNil(result) {
		assert.Equal([]string{
			filepath.Join(config.ImageDir, "ab_img_05032024_9_1.jpg"),
			filepath.Join(config.ImageDir, "ab_img_05032024_9_2.jpg"),
			filepath.Join(config.ImageDir, "ab_img_05032024_9_3.jpg"),
		}, result.SavedPaths)
		assert.Equal([]int64{3, 4, 5}, result.ByteCounts)
	}
	assert.Equal([]string{"ab_img_05032024_9_1.jpg", "ab_img_05032024_9_2.jpg", "ab_img_05032024_9_3.jpg"}, progressFiles)

	// Fetched strictly in display order
	var urls []string
	for _, c := range fetcher.Calls() {
		urls = append(urls, c.URL)
	}
	assert.Equal(d.ImageURLs, urls)
}

func TestRetrievePhotoSetPartialFailure(t *testing.T) {
	assert := assert_.New(t)
	fetcher := fetchtest.New().
		Respond("https://cdn.example/1.jpg", "one").
		Fail("https://cdn.example/2.jpg", errors.New("404")).
		Respond("https://cdn.example/3.jpg", "three")
	r, config := newTestRetriever(t, fetcher)

	d := PhotoSetDescriptor{
		AuthorID:  "ab",
		SetID:     "9",
		Created:   UnixTime(1709596800),
		ImageURLs: []string{"https://cdn.example/1.jpg", "https://cdn.example/2.jpg", "https://cdn.example/3.jpg"},
	}
	result, err := r.Retrieve(context.Background(), d, "")
	assert.ErrorIs(err, ErrRetrievalFailed)
	var retrievalErr *RetrievalError
	if assert.ErrorAs(err, &retrievalErr) {
		assert.Equal(1, retrievalErr.Saved)
		assert.Equal(3, retrievalErr.Total)
		assert.True(retrievalErr.IsPartial())
		assert.Contains(err.Error(), "saved 1 of 3")
	}
	if assert.NotNil(result) {
		assert.Equal(1, result.Count())
	}
	assert.Equal([]string{"ab_img_05032024_9_1.jpg"}, listDir(t, config.ImageDir))
	// The third image is never attempted
	assert.Equal(0, fetcher.CallsWithPrefix("https://cdn.example/3.jpg"))
}

func TestRetrieveInvalidDescriptor(t *testing.T) {
	assert := assert_.New(t)
	r, _ := newTestRetriever(t, fetchtest.New())

	_, err := r.Retrieve(context.Background(), nil, "")
	assert.ErrorIs(err, ErrRetrievalFailed)
	_, err = r.Retrieve(context.Background(), PhotoSetDescriptor{AuthorID: "ab", SetID: "1"}, "")
	assert.ErrorIs(err, ErrRetrievalFailed)
	assert.ErrorIs(err, ErrMalformedResponse)
}
