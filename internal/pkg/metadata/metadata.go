// Package metadata looks up track details for a streaming link. Lookups are
// best-effort: every failure is logged and reported as a nil result.
package metadata

import (
	"context"
	"time"

	"github.com/ManuelReschke/SongPitch/app/models"
)

const defaultTimeout = 10 * time.Second

// Details is the normalised result of a Spotify or YouTube lookup.
type Details struct {
	ArtistName string `json:"artist_name"`
	SongTitle  string `json:"song_title"`
	CoverURL   string `json:"album_cover,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	DurationMS int    `json:"duration_ms,omitempty"`
	Duration   string `json:"duration,omitempty"`
	ISRC       string `json:"isrc,omitempty"`
}

// TokenCache keeps short-lived API tokens between requests.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
}

// Lookup dispatches to the provider for linkType.
type Lookup struct {
	Spotify *SpotifyClient
	YouTube *YouTubeClient
}

func NewLookup(spotify *SpotifyClient, youtube *YouTubeClient) *Lookup {
	return &Lookup{Spotify: spotify, YouTube: youtube}
}

// Fetch returns nil when the link is not recognised or the provider fails.
// Anything other than a YouTube link type is treated as Spotify.
func (l *Lookup) Fetch(ctx context.Context, linkType, link string) *Details {
	if l == nil {
		return nil
	}
	if linkType == models.LinkTypeYouTube {
		if l.YouTube == nil {
			return nil
		}
		return l.YouTube.VideoDetails(ctx, link)
	}
	if l.Spotify == nil {
		return nil
	}
	return l.Spotify.TrackDetails(ctx, link)
}
