package main

import (
	"context"
	"io"
	"strings"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestPrompter(t *testing.T) {
	assert := assert_.New(t)
	var out strings.Builder
	p := newPrompter(strings.NewReader("\n  https://vt.tiktok.com/ABCDEF/  \nmaybe\nN\nhttps://vt.tiktok.com/LAST/"), &out)
	ctx := context.Background()

	url, err := p.URL(ctx)
	assert.NoError(err)
	assert.Equal("https://vt.tiktok.com/ABCDEF/", url)

	again, err := p.Confirm(ctx, "Another?")
	assert.NoError(err)
	assert.False(again)

	// Final line without a newline is still read
	url, err = p.URL(ctx)
	assert.NoError(err)
	assert.Equal("https://vt.tiktok.com/LAST/", url)

	_, err = p.URL(ctx)
	assert.ErrorIs(err, io.EOF)
	assert.Contains(out.String(), "Another? [Y/n]: ")
}

func TestPrompterCancelled(t *testing.T) {
	assert := assert_.New(t)
	reader, writer := io.Pipe()
	defer writer.Close()
	p := newPrompter(reader, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.URL(ctx)
	assert.ErrorIs(err, context.Canceled)
}
