package media_archiver

import (
	"context"
	"fmt"
	"net/http"
)

// RetrievalResult lists every file written, in the descriptor's natural order.
type RetrievalResult struct {
	SavedPaths []string
	ByteCounts []int64
}

func (r *RetrievalResult) add(path string, n int64) {
	r.SavedPaths = append(r.SavedPaths, path)
	r.ByteCounts = append(r.ByteCounts, n)
}

// Count is the number of files written.
func (r *RetrievalResult) Count() int {
	return len(r.SavedPaths)
}

// TotalBytes is the sum of ByteCounts.
func (r *RetrievalResult) TotalBytes() (total int64) {
	for _, n := range r.ByteCounts {
		total += n
	}
	return total
}

type RetrieverConfig struct {
	VideoDir string
	ImageDir string
	Naming   Naming
	// OnProgress, if set, is called before each file is fetched and returns the progress callback for that file.
	OnProgress func(filename string) ProgressFunc
}

// A Retriever streams the media a MediaDescriptor refers to into files.
type Retriever struct {
	fetcher Fetcher
	config  RetrieverConfig
}

func NewRetriever(fetcher Fetcher, config RetrieverConfig) *Retriever {
	return &Retriever{fetcher: fetcher, config: config}
}

// Retrieve saves the media of d. A video is fetched with refererURL as its Referer. The images of a photo set are
// fetched one at a time in display order; the first failure stops the set, leaving earlier files in place, and the
// returned result (alongside a *RetrievalError) lists what was saved. Existing files with the same name are
// overwritten.
func (r *Retriever) Retrieve(ctx context.Context, d MediaDescriptor, refererURL string) (*RetrievalResult, error) {
	if d == nil {
		return nil, &RetrievalError{Err: Malformed("no descriptor")}
	}
	if err := d.Validate(); err != nil {
		return nil, &RetrievalError{Total: 1, Err: err}
	}
	switch d := d.(type) {
	case VideoDescriptor:
		return r.retrieveVideo(ctx, d, refererURL)
	case PhotoSetDescriptor:
		return r.retrievePhotoSet(ctx, d)
	default:
		return nil, &RetrievalError{Err: fmt.Errorf("unsupported descriptor %T", d)}
	}
}

func (r *Retriever) retrieveVideo(ctx context.Context, d VideoDescriptor, refererURL string) (*RetrievalResult, error) {
	filename, err := r.config.Naming.VideoFilename(d)
	if err != nil {
		return nil, &RetrievalError{Total: 1, Err: err}
	}
	header := http.Header{}
	if refererURL != "" {
		header.Set("Referer", refererURL)
	}
	result := &RetrievalResult{}
	path, n, err := r.save(ctx, r.config.VideoDir, filename, d.PlaybackURL, header)
	if err != nil {
		return nil, &RetrievalError{Total: 1, Err: err}
	}
	result.add(path, n)
	Logger(ctx).Sugar().Named("retriever").Debugf("saved %s (%d bytes)", path, n)
	return result, nil
}

func (r *Retriever) retrievePhotoSet(ctx context.Context, d PhotoSetDescriptor) (*RetrievalResult, error) {
	log := Logger(ctx).Sugar().Named("retriever")
	total := len(d.ImageURLs)
	result := &RetrievalResult{}
	for i, imageURL := range d.ImageURLs {
		filename, err := r.config.Naming.PhotoFilename(d, i)
		if err == nil {
			var path string
			var n int64
			if path, n, err = r.save(ctx, r.config.ImageDir, filename, imageURL, nil); err == nil {
				result.add(path, n)
				log.Debugf("saved image %d/%d: %s (%d bytes)", i+1, total, path, n)
				continue
			}
		}
		log.Debugf("image %d/%d failed: %v", i+1, total, err)
		return result, &RetrievalError{
			Saved: result.Count(),
			Total: total,
			Err:   fmt.Errorf("image %d of %d: %w", i+1, total, err),
		}
	}
	return result, nil
}

func (r *Retriever) save(ctx context.Context, dir string, filename string, url string, header http.Header) (string, int64, error) {
	builder := NewDownloadBuilder().WithContext(ctx).WithTargetDir(dir)
	if r.config.OnProgress != nil {
		builder.WithProgressCallback(r.config.OnProgress(filename))
	}
	d, err := builder.Build()
	if err != nil {
		return "", 0, err
	}
	resp, err := r.fetcher.Get(ctx, url, header)
	if err != nil {
		return "", 0, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	d.AddExpectedBytes(resp.ContentLength)
	return d.SaveStream(filename, resp.Body)
}
