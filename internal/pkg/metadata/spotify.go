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

const (
	defaultSpotifyTokenURL   = "https://accounts.spotify.com/api/token"
	defaultSpotifyAPIBaseURL = "https://api.spotify.com/v1"

	spotifyTokenCacheKey = "spotify:access_token"
	// tokens are dropped from the cache this long before Spotify expires them
	spotifyTokenMargin = time.Minute
)

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIBaseURL   string
	Timeout      time.Duration
}

func SpotifyConfigFromEnv() SpotifyConfig {
	return SpotifyConfig{
		ClientID:     strings.TrimSpace(env.GetEnv("SPOTIFY_API_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(env.GetEnv("SPOTIFY_API_CLIENT_SECRET", "")),
		TokenURL:     env.GetEnv("SPOTIFY_TOKEN_URL", defaultSpotifyTokenURL),
		APIBaseURL:   env.GetEnv("SPOTIFY_API_BASE_URL", defaultSpotifyAPIBaseURL),
		Timeout:      env.GetEnvDuration("METADATA_TIMEOUT", defaultTimeout),
	}
}

type SpotifyClient struct {
	cfg   SpotifyConfig
	cache TokenCache

	HTTPClient *http.Client
}

// NewSpotifyClient creates a client. cache may be nil, in which case a token
// is requested for every lookup.
func NewSpotifyClient(cfg SpotifyConfig, cache TokenCache) *SpotifyClient {
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultSpotifyTokenURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultSpotifyAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &SpotifyClient{
		cfg:        cfg,
		cache:      cache,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *SpotifyClient) Configured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type spotifyTrack struct {
	Name       string `json:"name"`
	DurationMS int    `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	ExternalIDs struct {
		ISRC string `json:"isrc"`
	} `json:"external_ids"`
}

// SpotifyTrackID extracts the id from an open.spotify.com/track/<id> link,
// including localised paths such as /intl-de/track/<id>.
func SpotifyTrackID(link string) string {
	if !strings.Contains(link, "spotify.com/") {
		return ""
	}
	const marker = "/track/"
	idx := strings.Index(link, marker)
	if idx < 0 {
		return ""
	}
	id := link[idx+len(marker):]
	if cut := strings.IndexAny(id, "?#/"); cut >= 0 {
		id = id[:cut]
	}
	return id
}

// TrackDetails returns nil on any failure.
func (c *SpotifyClient) TrackDetails(ctx context.Context, link string) *Details {
	log := logger.FromContext(ctx)

	trackID := SpotifyTrackID(link)
	if trackID == "" || !c.Configured() {
		return nil
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		log.Warn("spotify_token_failed", zap.Error(err))
		return nil
	}

	var track spotifyTrack
	endpoint := fmt.Sprintf("%s/tracks/%s", c.cfg.APIBaseURL, url.PathEscape(trackID))
	if err := c.getJSON(ctx, endpoint, token, &track); err != nil {
		log.Warn("spotify_track_lookup_failed", zap.String("track_id", trackID), zap.Error(err))
		return nil
	}

	artists := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		artists = append(artists, a.Name)
	}
	details := &Details{
		ArtistName: strings.Join(artists, ", "),
		SongTitle:  track.Name,
		DurationMS: track.DurationMS,
		ISRC:       track.ExternalIDs.ISRC,
	}
	if len(track.Album.Images) > 0 {
		details.CoverURL = track.Album.Images[0].URL
	}
	return details
}

func (c *SpotifyClient) accessToken(ctx context.Context) (string, error) {
	if c.cache != nil {
		if token, ok, err := c.cache.Get(ctx, spotifyTokenCacheKey); err == nil && ok {
			return token, nil
		}
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out spotifyTokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("spotify token response missing access_token")
	}

	if c.cache != nil {
		ttl := time.Duration(out.ExpiresIn)*time.Second - spotifyTokenMargin
		if ttl > 0 {
			if err := c.cache.Set(ctx, spotifyTokenCacheKey, out.AccessToken, ttl); err != nil {
				logger.FromContext(ctx).Debug("spotify_token_cache_failed", zap.Error(err))
			}
		}
	}
	return out.AccessToken, nil
}

func (c *SpotifyClient) getJSON(ctx context.Context, endpoint, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
