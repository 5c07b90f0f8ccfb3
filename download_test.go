package media_archiver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

type failingReader struct {
	data string
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("stream interrupted")
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestDownloadSaveStream(t *testing.T) {
	assert := assert_.New(t)
	dir := filepath.Join(t.TempDir(), "nested", "target")
	var lastDownloaded, lastExpected int64
	d, err := NewDownloadBuilder().
		WithTargetDir(dir).
		WithProgressCallback(func(downloaded int64, expected int64) {
			lastDownloaded, lastExpected = downloaded, expected
		}).
		Build()
	assert.NoError(err)

	d.AddExpectedBytes(-1)
	d.AddExpectedBytes(5)
	path, n, err := d.SaveStream("a.bin", strings.NewReader("hello"))
	assert.NoError(err)
	assert.Equal(filepath.Join(dir, "a.bin"), path)
	assert.Equal(int64(5), n)
	assert.Equal(int64(5), lastDownloaded)
	assert.Equal(int64(5), lastExpected)
	downloaded, expected := d.Progress()
	assert.Equal(int64(5), downloaded)
	assert.Equal(int64(5), expected)

	// Directory creation is idempotent
	_, _, err = d.SaveStream("b.bin", strings.NewReader("world"))
	assert.NoError(err)
}

func TestDownloadSaveStreamFailureRemovesFile(t *testing.T) {
	assert := assert_.New(t)
	dir := t.TempDir()
	d, err := NewDownloadBuilder().WithTargetDir(dir).Build()
	assert.NoError(err)

	_, _, err = d.SaveStream("broken.mp4", &failingReader{data: "partial"})
	assert.Error(err)
	_, statErr := os.Stat(filepath.Join(dir, "broken.mp4"))
	assert.True(os.IsNotExist(statErr))
}

func TestDownloadCancelled(t *testing.T) {
	assert := assert_.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d, err := NewDownloadBuilder().WithContext(ctx).WithTargetDir(t.TempDir()).Build()
	assert.NoError(err)
	_, _, err = d.SaveStream("x", strings.NewReader("data"))
	assert.ErrorIs(err, context.Canceled)
}

func TestDownloadBuilderRequiresDir(t *testing.T) {
	assert := assert_.New(t)
	_, err := NewDownloadBuilder().WithTargetDir("").Build()
	assert.Error(err)
}
