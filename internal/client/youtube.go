package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const oembedURL = "https://www.youtube.com/oembed"

type YouTubeClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewYouTubeClient() *YouTubeClient {
	return &YouTubeClient{
		baseURL: oembedURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type VideoMetadata struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// GetMetadata resolves a video's title and thumbnail through the oEmbed
// endpoint. A 404 or 401 means the video is private or still processing.
func (c *YouTubeClient) GetMetadata(ctx context.Context, youtubeID string) (*VideoMetadata, error) {
	params := url.Values{}
	params.Set("url", "https://www.youtube.com/watch?v="+youtubeID)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("oembed returned status %d: %s", resp.StatusCode, string(body))
	}

	var meta VideoMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, err
	}

	return &meta, nil
}
