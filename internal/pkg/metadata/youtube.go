package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ManuelReschke/SongPitch/internal/pkg/env"
	"github.com/ManuelReschke/SongPitch/internal/pkg/logger"
)

const defaultYouTubeAPIBaseURL = "https://www.googleapis.com/youtube/v3"

type YouTubeConfig struct {
	APIKey     string
	APIBaseURL string
	Timeout    time.Duration
}

func YouTubeConfigFromEnv() YouTubeConfig {
	return YouTubeConfig{
		APIKey:     strings.TrimSpace(env.GetEnv("YOUTUBE_API_KEY", "")),
		APIBaseURL: env.GetEnv("YOUTUBE_API_BASE_URL", defaultYouTubeAPIBaseURL),
		Timeout:    env.GetEnvDuration("METADATA_TIMEOUT", defaultTimeout),
	}
}

type YouTubeClient struct {
	cfg YouTubeConfig

	HTTPClient *http.Client
}

func NewYouTubeClient(cfg YouTubeConfig) *YouTubeClient {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultYouTubeAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &YouTubeClient{cfg: cfg, HTTPClient: &http.Client{Timeout: cfg.Timeout}}
}

type youtubeVideoList struct {
	Items []struct {
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// YouTubeVideoID supports youtube.com/watch?v=<id> and youtu.be/<id> links.
func YouTubeVideoID(link string) string {
	var id string
	switch {
	case strings.Contains(link, "youtube.com/watch"):
		if i := strings.Index(link, "v="); i >= 0 {
			id = link[i+2:]
		}
	case strings.Contains(link, "youtu.be/"):
		id = link[strings.Index(link, "youtu.be/")+len("youtu.be/"):]
	}
	if cut := strings.IndexAny(id, "&?#/"); cut >= 0 {
		id = id[:cut]
	}
	return id
}

// VideoDetails returns nil on any failure.
func (c *YouTubeClient) VideoDetails(ctx context.Context, link string) *Details {
	videoID := YouTubeVideoID(link)
	if videoID == "" || c.cfg.APIKey == "" {
		return nil
	}
	log := logger.FromContext(ctx).With(zap.String("video_id", videoID))

	q := url.Values{
		"part": {"snippet,contentDetails"},
		"id":   {videoID},
		"key":  {c.cfg.APIKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIBaseURL+"/videos?"+q.Encode(), nil)
	if err != nil {
		log.Warn("youtube_lookup_failed", zap.Error(err))
		return nil
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warn("youtube_lookup_failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		log.Warn("youtube_lookup_failed", zap.Error(fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))))
		return nil
	}

	var list youtubeVideoList
	if err := json.Unmarshal(body, &list); err != nil {
		log.Warn("youtube_lookup_failed", zap.Error(err))
		return nil
	}
	if len(list.Items) == 0 {
		return nil
	}
	item := list.Items[0]
	return &Details{
		ArtistName: item.Snippet.ChannelTitle,
		SongTitle:  item.Snippet.Title,
		Thumbnail:  item.Snippet.Thumbnails.High.URL,
		Duration:   item.ContentDetails.Duration,
	}
}
