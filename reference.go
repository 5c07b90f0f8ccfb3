package media_archiver

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/alanbriolat/media-archiver/generic"
	"github.com/alanbriolat/media-archiver/util"
)

type MediaKind string

const (
	MediaKindVideo    MediaKind = "video"
	MediaKindPhotoSet MediaKind = "photo"
)

func (k MediaKind) String() string {
	return string(k)
}

// Label is the human-readable name used in reports.
func (k MediaKind) Label() string {
	switch k {
	case MediaKindVideo:
		return "Video"
	case MediaKindPhotoSet:
		return "Photo"
	default:
		return "Unknown"
	}
}

// MediaReference is the classified subject of one resolution attempt.
type MediaReference struct {
	SourceURL string
	Kind      MediaKind
}

func (r MediaReference) String() string {
	return fmt.Sprintf("%s %s", r.Kind, r.SourceURL)
}

// Scheme, optional subdomain, platform domain, then any path.
var platformURLPattern = regexp.MustCompile(`^https?://(?:[a-zA-Z0-9-]+\.)?tiktok\.com(?:/.*)?$`)

var photoSegments = generic.NewSet("photo")

// Classify validates s as a platform URL and decides whether it refers to a video or a photo set. It only looks at
// the shape of the URL and never performs network I/O.
func Classify(s string) (MediaReference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MediaReference{}, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}
	if !platformURLPattern.MatchString(s) {
		return MediaReference{}, fmt.Errorf("%w: %q is not a supported platform URL", ErrInvalidURL, s)
	}
	parsedURL, err := url.Parse(s)
	if err != nil {
		return MediaReference{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	ref := MediaReference{SourceURL: s, Kind: MediaKindVideo}
	if segments, err := util.PathSegments(parsedURL); err == nil && photoSegments.ContainsAny(segments...) {
		ref.Kind = MediaKindPhotoSet
	}
	return ref, nil
}
