package media_archiver

import (
	"testing"
	"text/template"

	assert_ "github.com/stretchr/testify/assert"
)

func TestNamingVideo(t *testing.T) {
	assert := assert_.New(t)
	n := NewNaming()

	name, err := n.VideoFilename(VideoDescriptor{
		AuthorID: "ab",
		ItemID:   "123",
		Created:  UnixTime(1709596800),
	})
	assert.NoError(err)
	assert.Equal("ab_vid_05032024_123.mp4", name)
}

func TestNamingPhoto(t *testing.T) {
	assert := assert_.New(t)
	n := NewNaming()

	d := PhotoSetDescriptor{
		AuthorID:  "ab",
		SetID:     "777",
		Created:   UnixTime(1709596800),
		ImageURLs: []string{"a", "b", "c"},
	}
	for i, expected := range []string{
		"ab_img_05032024_777_1.jpg",
		"ab_img_05032024_777_2.jpg",
		"ab_img_05032024_777_3.jpg",
	} {
		name, err := n.PhotoFilename(d, i)
		assert.NoError(err)
		assert.Equal(expected, name)
	}
}

func TestNamingRejectsPaths(t *testing.T) {
	assert := assert_.New(t)
	n := NewNaming()

	_, err := n.VideoFilename(VideoDescriptor{AuthorID: "../ab", ItemID: "1"})
	assert.Error(err)

	n.VideoFileTemplate = template.Must(template.New("empty").Parse(""))
	_, err = n.VideoFilename(VideoDescriptor{AuthorID: "ab", ItemID: "1"})
	assert.Error(err)
}

func TestFormatDate(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("05032024", FormatDate(UnixTime(1709640000)))
	assert.Equal("01011970", FormatDate(UnixTime(0)))
}
