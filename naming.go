package media_archiver

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

const (
	DefaultVideoFileTemplate = "{{.Author}}_vid_{{.Date}}_{{.ID}}.mp4"
	DefaultPhotoFileTemplate = "{{.Author}}_img_{{.Date}}_{{.ID}}_{{.Number}}.jpg"
	// Day, month, four-digit year.
	filenameDateLayout = "02012006"
)

// Naming produces the deterministic filenames that media is saved under.
type Naming struct {
	VideoFileTemplate *template.Template
	PhotoFileTemplate *template.Template
}

func NewNaming() Naming {
	return Naming{
		VideoFileTemplate: template.Must(template.New("video_file").Parse(DefaultVideoFileTemplate)),
		PhotoFileTemplate: template.Must(template.New("photo_file").Parse(DefaultPhotoFileTemplate)),
	}
}

type filenameTemplateArgs struct {
	Author string
	ID     string
	Date   string
	// Number is the 1-based position within a photo set.
	Number int
}

func newFilenameTemplateArgs(d MediaDescriptor) filenameTemplateArgs {
	return filenameTemplateArgs{
		Author: d.Author(),
		ID:     d.ID(),
		Date:   FormatDate(d.CreatedAt()),
	}
}

func (n Naming) VideoFilename(d VideoDescriptor) (string, error) {
	return executeFilename(n.VideoFileTemplate, newFilenameTemplateArgs(d))
}

// PhotoFilename names the image at the zero-based index within the set.
func (n Naming) PhotoFilename(d PhotoSetDescriptor, index int) (string, error) {
	args := newFilenameTemplateArgs(d)
	args.Number = index + 1
	return executeFilename(n.PhotoFileTemplate, args)
}

func executeFilename(t *template.Template, args filenameTemplateArgs) (string, error) {
	builder := strings.Builder{}
	if err := t.Execute(&builder, &args); err != nil {
		return "", err
	}
	filename := builder.String()
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Trim(filename, ".") == "" {
		return "", fmt.Errorf("unusable filename %q", filename)
	}
	return filename, nil
}

// FormatDate renders t the way filenames do, e.g. 05032024.
func FormatDate(t time.Time) string {
	return t.UTC().Format(filenameDateLayout)
}
