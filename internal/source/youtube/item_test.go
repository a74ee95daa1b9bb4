package youtube

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"premise_fetcher/internal/domain"
)

const testVideo = "dQw4w9WgXcQ"

const videoJSON = `{"items":[{"id":"dQw4w9WgXcQ","snippet":{"title":"A carta","description":"Ela achou uma carta antiga.",
"channelId":"UC_x5XG1OV2P6uZZ5FSM9Ttw","channelTitle":"Google for Developers","publishedAt":"2026-01-02T10:00:00Z"},
"statistics":{"viewCount":"1000","likeCount":"50","commentCount":"7"}}]}`

func TestParseVideoURL(t *testing.T) {
	for _, raw := range []string{
		"https://www.youtube.com/watch?v=" + testVideo,
		"youtube.com/watch?v=" + testVideo + "&t=42s",
		"https://m.youtube.com/shorts/" + testVideo,
		"https://www.youtube.com/embed/" + testVideo,
		"https://youtu.be/" + testVideo + "?si=abc",
	} {
		id, err := parseVideoURL(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, testVideo, id, raw)
	}

	for _, raw := range []string{
		"https://www.youtube.com/channel/" + testChannel,
		"https://www.youtube.com/watch",
		"https://www.youtube.com/watch?v=short",
		"https://youtu.be/",
		"https://vimeo.com/watch?v=" + testVideo,
	} {
		_, err := parseVideoURL(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}

func TestFetchItem(t *testing.T) {
	var gotPath, gotID string
	s := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotID = r.URL.Path, r.URL.Query().Get("id")
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		w.Write([]byte(videoJSON))
	}))

	batch, err := s.FetchItem(context.Background(), "https://youtu.be/"+testVideo)

	require.NoError(t, err)
	assert.Equal(t, "/videos", gotPath)
	assert.Equal(t, testVideo, gotID)
	assert.Equal(t, "Google for Developers", batch.Source.Name)
	assert.Equal(t, "https://www.youtube.com/channel/"+testChannel, batch.Source.URL)
	require.Len(t, batch.Items, 1)

	item := batch.Items[0]
	assert.Equal(t, "https://www.youtube.com/watch?v="+testVideo, item.Link)
	assert.Equal(t, "Ela achou uma carta antiga.", item.Body)
	assert.Equal(t, int64(50), item.Likes)
	require.NotNil(t, item.Views)
	assert.Equal(t, int64(1000), *item.Views)
}

func TestFetchItem_Errors(t *testing.T) {
	empty := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	_, err := empty.FetchItem(context.Background(), "https://www.youtube.com/watch?v="+testVideo)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	quota := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"quota exceeded"}}`))
	}))
	_, err = quota.FetchItem(context.Background(), "https://www.youtube.com/watch?v="+testVideo)
	assert.ErrorIs(t, err, domain.ErrUpstream)

	_, err = New(Config{}, testLogger()).FetchItem(context.Background(), "https://www.youtube.com/watch?v="+testVideo)
	assert.ErrorIs(t, err, domain.ErrDisabled)
}
