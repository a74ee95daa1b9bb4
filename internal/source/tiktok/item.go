package tiktok

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/source"
)

var (
	videoIDPattern  = regexp.MustCompile(`^\d{15,20}$`)
	likesPattern    = regexp.MustCompile(`(?i)([\d.,]+\s*[KMB]?)\s+Likes`)
	commentsPattern = regexp.MustCompile(`(?i)([\d.,]+\s*[KMB]?)\s+Comments`)
	captionPattern  = regexp.MustCompile(`(?s)TikTok video from [^:]*:\s*"(.*)"`)
)

// parseVideoURL accepts tiktok.com/@<handle>/video/<id>.
func parseVideoURL(rawURL string) (handle, id string, err error) {
	u, err := source.ParseURL(rawURL, "tiktok.com")
	if err != nil {
		return "", "", err
	}

	segs := source.PathSegments(u)
	if len(segs) < 3 || !strings.HasPrefix(segs[0], "@") || segs[1] != "video" {
		return "", "", fmt.Errorf("%w: expected a video url like https://www.tiktok.com/@<handle>/video/<id>", domain.ErrValidation)
	}

	handle = strings.ToLower(strings.TrimPrefix(segs[0], "@"))
	if !handlePattern.MatchString(handle) {
		return "", "", fmt.Errorf("%w: invalid tiktok handle %q", domain.ErrValidation, handle)
	}
	if !videoIDPattern.MatchString(segs[2]) {
		return "", "", fmt.Errorf("%w: invalid tiktok video id %q", domain.ErrValidation, segs[2])
	}
	return handle, segs[2], nil
}

// FetchItem reads a single video from its server-rendered page. The page meta
// description carries the caption and the like and comment counters; views are
// not exposed.
func (s *Source) FetchItem(ctx context.Context, rawURL string) (*domain.Batch, error) {
	handle, id, err := parseVideoURL(rawURL)
	if err != nil {
		return nil, err
	}
	if s.lister == nil {
		return nil, fmt.Errorf("%w: tiktok extraction is turned off", domain.ErrDisabled)
	}

	path := "/video/" + id
	meta, err := s.fetchPage(ctx, profileURL(s.baseURL, handle)+path, "tiktok video "+id)
	if err != nil {
		return nil, err
	}

	item := domain.RawItem{
		ExternalID:  id,
		Link:        profileURL(canonicalBase, handle) + path,
		Body:        meta.caption(),
		Author:      handle,
		PublishedAt: videoTime(id),
		Likes:       meta.count(likesPattern),
		Comments:    meta.count(commentsPattern),
	}

	s.logger.Debug("fetched video page", "handle", handle, "video_id", id)

	return &domain.Batch{
		Source: domain.SourceInfo{
			ExternalID: handle,
			Name:       handle,
			URL:        profileURL(canonicalBase, handle),
		},
		Items: []domain.RawItem{item},
	}, nil
}

// caption extracts the quoted caption of a video page description and falls
// back to the whole description.
func (m profileMeta) caption() string {
	if match := captionPattern.FindStringSubmatch(m.Description); match != nil {
		return strings.TrimSpace(match[1])
	}
	return m.Description
}

// videoTime decodes the creation time stored in the upper 32 bits of a video id.
func videoTime(id string) time.Time {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(int64(n>>32), 0).UTC()
}
