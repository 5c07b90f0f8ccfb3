package media_archiver

import (
	"fmt"
	"time"

	"github.com/alanbriolat/media-archiver/generic"
)

// MediaDescriptor is the result of a successful resolution, either a VideoDescriptor or a PhotoSetDescriptor.
type MediaDescriptor interface {
	Kind() MediaKind
	// ID is the platform identifier of the item (video) or set (photos).
	ID() string
	Author() string
	CreatedAt() time.Time
	// Validate returns an ErrMalformedResponse error if a required field is missing.
	Validate() error

	isMediaDescriptor()
}

type VideoDescriptor struct {
	AuthorID    string
	ItemID      string
	Created     time.Time
	PlaybackURL string
	Title       generic.Option[string]
}

func (d VideoDescriptor) Kind() MediaKind      { return MediaKindVideo }
func (d VideoDescriptor) ID() string           { return d.ItemID }
func (d VideoDescriptor) Author() string       { return d.AuthorID }
func (d VideoDescriptor) CreatedAt() time.Time { return d.Created }
func (d VideoDescriptor) isMediaDescriptor()   {}

func (d VideoDescriptor) Validate() error {
	switch {
	case d.AuthorID == "":
		return Malformed("video has no author")
	case d.ItemID == "":
		return Malformed("video has no id")
	case d.PlaybackURL == "":
		return Malformed("video %s has no playback URL", d.ItemID)
	}
	return nil
}

func (d VideoDescriptor) String() string {
	return fmt.Sprintf("video %s by %s", d.ItemID, d.AuthorID)
}

type PhotoSetDescriptor struct {
	AuthorID string
	SetID    string
	Created  time.Time
	// ImageURLs are in display order.
	ImageURLs []string
}

func (d PhotoSetDescriptor) Kind() MediaKind      { return MediaKindPhotoSet }
func (d PhotoSetDescriptor) ID() string           { return d.SetID }
func (d PhotoSetDescriptor) Author() string       { return d.AuthorID }
func (d PhotoSetDescriptor) CreatedAt() time.Time { return d.Created }
func (d PhotoSetDescriptor) isMediaDescriptor()   {}

func (d PhotoSetDescriptor) Validate() error {
	switch {
	case d.AuthorID == "":
		return Malformed("photo set has no author")
	case d.SetID == "":
		return Malformed("photo set has no id")
	case len(d.ImageURLs) == 0:
		return Malformed("photo set %s has no images", d.SetID)
	}
	for i, u := range d.ImageURLs {
		if u == "" {
			return Malformed("photo set %s image %d has no URL", d.SetID, i+1)
		}
	}
	return nil
}

func (d PhotoSetDescriptor) String() string {
	return fmt.Sprintf("photo set %s by %s (%d images)", d.SetID, d.AuthorID, len(d.ImageURLs))
}

// UnixTime converts platform timestamps (UTC seconds since epoch) to time.Time.
func UnixTime(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}
