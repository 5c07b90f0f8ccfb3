package media_archiver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// A Download writes streams into a target directory, tracking byte progress across every file it saves.
type Download interface {
	// AddDownloadedBytes increases how many bytes have been successfully downloaded so far.
	AddDownloadedBytes(n int64)

	// AddExpectedBytes increases how many bytes are expected to be downloaded. Unknown sizes (negative) are ignored.
	AddExpectedBytes(n int64)

	// Context is the context that cancels in-progress copies.
	Context() context.Context

	// CreateFile creates (or truncates) a file in the target directory, creating the directory if needed.
	CreateFile(filename string) (io.WriteCloser, error)

	// Progress returns the downloaded and expected bytes of the download.
	Progress() (int64, int64)

	// SaveStream will copy the stream to the named file, calling AddDownloadedBytes as necessary, and returns the
	// path and size of the written file. A file that fails part way through is removed.
	SaveStream(filename string, stream io.Reader) (string, int64, error)

	// TargetPath is where filename would be saved.
	TargetPath(filename string) string

	// Write will ignore the data but will send the byte count to AddDownloadedBytes. Allows progress tracking using
	// io.MultiWriter (but ensure the Download is the last writer to avoid counting failed writes).
	Write(p []byte) (n int, err error)
}

type ProgressFunc = func(downloaded int64, expected int64)

type download struct {
	ctx              context.Context
	progressCallback ProgressFunc
	targetDir        string
	expectedBytes    int64
	downloadedBytes  int64
}

func (d *download) AddDownloadedBytes(n int64) {
	d.downloadedBytes += n
	if d.progressCallback != nil {
		d.progressCallback(d.Progress())
	}
}

func (d *download) AddExpectedBytes(n int64) {
	if n <= 0 {
		return
	}
	d.expectedBytes += n
	if d.progressCallback != nil {
		d.progressCallback(d.Progress())
	}
}

func (d *download) Context() context.Context {
	return d.ctx
}

func (d *download) CreateFile(filename string) (io.WriteCloser, error) {
	if err := os.MkdirAll(d.targetDir, 0775); err != nil {
		return nil, err
	}
	return os.Create(d.TargetPath(filename))
}

func (d *download) Progress() (int64, int64) {
	return d.downloadedBytes, d.expectedBytes
}

func (d *download) SaveStream(filename string, stream io.Reader) (string, int64, error) {
	f, err := d.CreateFile(filename)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open target file: %w", err)
	}
	path := d.TargetPath(filename)
	n, err := io.Copy(io.MultiWriter(f, d), &readerContext{ctx: d.ctx, r: stream})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", n, fmt.Errorf("failed to save stream: %w", err)
	}
	return path, n, nil
}

func (d *download) TargetPath(filename string) string {
	return filepath.Join(d.targetDir, filename)
}

func (d *download) Write(p []byte) (n int, err error) {
	n = len(p)
	d.AddDownloadedBytes(int64(n))
	return n, nil
}

type DownloadBuilder interface {
	Build() (Download, error)
	WithContext(ctx context.Context) DownloadBuilder
	WithProgressCallback(f ProgressFunc) DownloadBuilder
	WithTargetDir(dir string) DownloadBuilder
}

type downloadBuilder struct {
	ctx              context.Context
	progressCallback ProgressFunc
	targetDir        string
}

func NewDownloadBuilder() DownloadBuilder {
	return &downloadBuilder{
		ctx:       context.Background(),
		targetDir: ".",
	}
}

func (b *downloadBuilder) Build() (Download, error) {
	if b.targetDir == "" {
		return nil, fmt.Errorf("no target directory")
	}
	return &download{
		ctx:              b.ctx,
		progressCallback: b.progressCallback,
		targetDir:        b.targetDir,
	}, nil
}

func (b *downloadBuilder) WithContext(ctx context.Context) DownloadBuilder {
	b.ctx = ctx
	return b
}

func (b *downloadBuilder) WithProgressCallback(f ProgressFunc) DownloadBuilder {
	b.progressCallback = f
	return b
}

func (b *downloadBuilder) WithTargetDir(dir string) DownloadBuilder {
	b.targetDir = dir
	return b
}
