package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alanbriolat/media-archiver"
	"github.com/alanbriolat/media-archiver/generic"
)

const (
	MarkupStrategyName = "markup"

	rehydrationElementID = "__UNIVERSAL_DATA_FOR_REHYDRATION__"
)

type universalData struct {
	DefaultScope struct {
		VideoDetail *videoDetail `json:"webapp.video-detail"`
	} `json:"__DEFAULT_SCOPE__"`
}

type videoDetail struct {
	StatusCode int    `json:"statusCode"`
	StatusMsg  string `json:"statusMsg"`
	ItemInfo   *struct {
		ItemStruct *itemStruct `json:"itemStruct"`
	} `json:"itemInfo"`
}

type itemStruct struct {
	ID         flexString `json:"id"`
	Desc       string     `json:"desc"`
	CreateTime flexInt    `json:"createTime"`
	Author     *struct {
		UniqueID string `json:"uniqueId"`
	} `json:"author"`
	Video *struct {
		PlayAddr    string `json:"playAddr"`
		BitrateInfo []struct {
			PlayAddr struct {
				URLList []string `json:"UrlList"`
			} `json:"PlayAddr"`
		} `json:"bitrateInfo"`
	} `json:"video"`
}

// playbackURL prefers the first URL of the first bitrate variant over the default playAddr.
func (s *itemStruct) playbackURL() string {
	if s.Video == nil {
		return ""
	}
	if len(s.Video.BitrateInfo) > 0 && len(s.Video.BitrateInfo[0].PlayAddr.URLList) > 0 {
		if u := s.Video.BitrateInfo[0].PlayAddr.URLList[0]; u != "" {
			return u
		}
	}
	return s.Video.PlayAddr
}

// resolveMarkup fetches the video page and reads the descriptor from its embedded rehydration data. Every problem,
// including a failed fetch, is NotApplicable so that the chain moves on to the backup API.
func (c Config) resolveMarkup(ctx context.Context, ref media_archiver.MediaReference) media_archiver.Outcome {
	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := c.Fetcher.Get(ctx, ref.SourceURL, header)
	if err != nil {
		return media_archiver.NotApplicable(fmt.Errorf("page fetch failed: %w", err))
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return media_archiver.NotApplicable(fmt.Errorf("failed to parse page: %w", err))
	}
	descriptor, err := extractMarkup(doc)
	if err != nil {
		return media_archiver.NotApplicable(err)
	}
	return media_archiver.Resolved(descriptor)
}

func extractMarkup(doc *goquery.Document) (media_archiver.VideoDescriptor, error) {
	var d media_archiver.VideoDescriptor
	element := doc.Find("#" + rehydrationElementID).First()
	if element.Length() == 0 {
		return d, errors.New("no rehydration data element")
	}
	payload := strings.TrimSpace(element.Contents().First().Text())
	if payload == "" {
		return d, errors.New("empty rehydration data")
	}
	var data universalData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return d, fmt.Errorf("invalid rehydration data: %w", err)
	}

	detail := data.DefaultScope.VideoDetail
	if detail == nil || detail.ItemInfo == nil || detail.ItemInfo.ItemStruct == nil {
		return d, media_archiver.Malformed("no itemStruct in rehydration data")
	}
	item := detail.ItemInfo.ItemStruct
	switch {
	case item.Author == nil || item.Author.UniqueID == "":
		return d, media_archiver.Malformed("no author.uniqueId")
	case item.ID == "":
		return d, media_archiver.Malformed("no itemStruct.id")
	case item.CreateTime <= 0:
		return d, media_archiver.Malformed("no itemStruct.createTime")
	case item.playbackURL() == "":
		return d, media_archiver.Malformed("no playback URL")
	}

	d = media_archiver.VideoDescriptor{
		AuthorID:    item.Author.UniqueID,
		ItemID:      string(item.ID),
		Created:     media_archiver.UnixTime(int64(item.CreateTime)),
		PlaybackURL: item.playbackURL(),
		Title:       generic.SomeIfNonZero(strings.TrimSpace(item.Desc)),
	}
	return d, nil
}
