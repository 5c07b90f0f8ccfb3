package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alanbriolat/media-archiver"
	"github.com/alanbriolat/media-archiver/generic"
	"github.com/alanbriolat/media-archiver/util"
)

const (
	BackupAPIStrategyName = "api"

	apiStatusSuccess = "success"
	apiTypeVideo     = "video"
	apiTypeImage     = "image"
)

var ErrBackupAPINotConfigured = errors.New("backup API not configured")

type apiResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Result  *apiResult `json:"result"`
}

type apiResult struct {
	Type       string     `json:"type"`
	ID         flexString `json:"id"`
	CreateTime flexInt    `json:"createTime"`
	Desc       string     `json:"desc"`
	Author     *struct {
		Username string `json:"username"`
	} `json:"author"`
	Video *struct {
		PlayAddr []string `json:"playAddr"`
	} `json:"video"`
	Images []string `json:"images"`
}

// resolveBackupAPI queries the backup API. Any problem is a terminal failure: this is the last strategy for videos
// and the only one for photo sets.
func (c Config) resolveBackupAPI(ctx context.Context, ref media_archiver.MediaReference) media_archiver.Outcome {
	if c.BackupAPIURL == "" {
		return media_archiver.Failed(ErrBackupAPINotConfigured)
	}
	param := c.BackupAPIParam
	if param == "" {
		param = "url"
	}
	requestURL, err := util.WithQueryParam(c.BackupAPIURL, param, ref.SourceURL)
	if err != nil {
		return media_archiver.Failed(fmt.Errorf("invalid backup API URL: %w", err))
	}
	resp, err := c.Fetcher.Get(ctx, requestURL, nil)
	if err != nil {
		return media_archiver.Failed(fmt.Errorf("backup API request failed: %w", err))
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return media_archiver.Failed(fmt.Errorf("backup API request failed: %w", err))
	}
	descriptor, err := parseBackupAPI(data, ref.Kind)
	if err != nil {
		return media_archiver.Failed(err)
	}
	return media_archiver.Resolved(descriptor)
}

func parseBackupAPI(data []byte, kind media_archiver.MediaKind) (media_archiver.MediaDescriptor, error) {
	var response apiResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, media_archiver.Malformed("backup API response: %v", err)
	}
	if response.Status != apiStatusSuccess {
		if response.Message != "" {
			return nil, fmt.Errorf("backup API status %q: %s", response.Status, response.Message)
		}
		return nil, fmt.Errorf("backup API status %q", response.Status)
	}
	result := response.Result
	if result == nil {
		return nil, media_archiver.Malformed("backup API response has no result")
	}
	expectedType := apiTypeVideo
	if kind == media_archiver.MediaKindPhotoSet {
		expectedType = apiTypeImage
	}
	if result.Type != expectedType {
		return nil, fmt.Errorf("backup API returned type %q, expected %q", result.Type, expectedType)
	}
	if result.Author == nil || result.Author.Username == "" {
		return nil, media_archiver.Malformed("backup API result has no author.username")
	}
	if result.ID == "" {
		return nil, media_archiver.Malformed("backup API result has no id")
	}
	if result.CreateTime <= 0 {
		return nil, media_archiver.Malformed("backup API result has no createTime")
	}
	created := media_archiver.UnixTime(int64(result.CreateTime))

	if expectedType == apiTypeImage {
		if len(result.Images) == 0 {
			return nil, media_archiver.Malformed("backup API result has no images")
		}
		return media_archiver.PhotoSetDescriptor{
			AuthorID:  result.Author.Username,
			SetID:     string(result.ID),
			Created:   created,
			ImageURLs: append([]string(nil), result.Images...),
		}, nil
	}
	if result.Video == nil || len(result.Video.PlayAddr) == 0 || result.Video.PlayAddr[0] == "" {
		return nil, media_archiver.Malformed("backup API result has no video.playAddr")
	}
	return media_archiver.VideoDescriptor{
		AuthorID:    result.Author.Username,
		ItemID:      string(result.ID),
		Created:     created,
		PlaybackURL: result.Video.PlayAddr[0],
		Title:       generic.SomeIfNonZero(strings.TrimSpace(result.Desc)),
	}, nil
}
