// Package qobuz provides a client for the Qobuz streaming API.
package qobuz

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/hifigo/hifigo/internal/app/protocol"
	"github.com/hifigo/hifigo/internal/domain/music"
)

const defaultBaseURL = "https://www.qobuz.com/api.json/0.2/"

// streamFormatFLAC is the CD-quality format id used for stream URL requests.
const streamFormatFLAC = 6

// Client is a Qobuz API client. It implements the player's Catalog interface.
type Client struct {
	appID      string
	appSecret  string
	userToken  string
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// Config represents Qobuz client configuration.
type Config struct {
	AppID     string
	AppSecret string // Required only for stream URL requests
	UserToken string
	BaseURL   string // Override for testing; empty uses the production API
}

// New creates a new Qobuz client.
func New(cfg Config) (*Client, error) {
	if cfg.AppID == "" || cfg.UserToken == "" {
		return nil, errors.New("qobuz app id and user token are required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		appID:      cfg.AppID,
		appSecret:  cfg.AppSecret,
		userToken:  cfg.UserToken,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// Album retrieves an album with its full track listing.
func (c *Client) Album(ctx context.Context, id string) (*music.Album, error) {
	params := url.Values{}
	params.Set("album_id", id)

	var resp albumResponse
	if err := c.get(ctx, "album/get", params, &resp); err != nil {
		return nil, errors.Wrapf(err, "failed to get album %s", id)
	}

	album := resp.toAlbum()
	return &album, nil
}

// Playlist retrieves a playlist with its full track listing.
func (c *Client) Playlist(ctx context.Context, id int64) (*music.Playlist, error) {
	params := url.Values{}
	params.Set("playlist_id", strconv.FormatInt(id, 10))
	params.Set("extra", "tracks")

	var resp playlistResponse
	if err := c.get(ctx, "playlist/get", params, &resp); err != nil {
		return nil, errors.Wrapf(err, "failed to get playlist %d", id)
	}

	playlist := resp.toPlaylist()
	return &playlist, nil
}

// Track retrieves a single track with its album reference.
func (c *Client) Track(ctx context.Context, id uint) (*music.Track, error) {
	params := url.Values{}
	params.Set("track_id", strconv.FormatUint(uint64(id), 10))

	var resp trackResponse
	if err := c.get(ctx, "track/get", params, &resp); err != nil {
		return nil, errors.Wrapf(err, "failed to get track %d", id)
	}

	track := resp.toTrack()
	return &track, nil
}

// TrackURL resolves the signed stream URL for a track.
func (c *Client) TrackURL(ctx context.Context, id uint) (string, error) {
	if c.appSecret == "" {
		return "", errors.Mark(errors.New("app secret required for stream urls"), protocol.ErrUnavailable)
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	trackID := strconv.FormatUint(uint64(id), 10)
	sig := fmt.Sprintf("trackgetFileUrlformat_id%dintentstreamtrack_id%s%s%s",
		streamFormatFLAC, trackID, ts, c.appSecret)

	params := url.Values{}
	params.Set("track_id", trackID)
	params.Set("format_id", strconv.Itoa(streamFormatFLAC))
	params.Set("intent", "stream")
	params.Set("request_ts", ts)
	params.Set("request_sig", fmt.Sprintf("%x", md5.Sum([]byte(sig))))

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.get(ctx, "track/getFileUrl", params, &resp); err != nil {
		return "", errors.Wrapf(err, "failed to get stream url for track %d", id)
	}
	return resp.URL, nil
}

// Search queries the catalog across albums, tracks, artists and playlists.
func (c *Client) Search(ctx context.Context, query string) (*protocol.SearchResults, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", "20")

	var resp searchResponse
	if err := c.get(ctx, "catalog/search", params, &resp); err != nil {
		return nil, errors.Wrapf(err, "search failed for %q", query)
	}

	results := resp.toSearchResults()
	results.Query = query
	return &results, nil
}

// ArtistAlbums retrieves the albums of an artist.
func (c *Client) ArtistAlbums(ctx context.Context, artistID int) ([]music.Album, error) {
	params := url.Values{}
	params.Set("artist_id", strconv.Itoa(artistID))
	params.Set("extra", "albums")

	var resp struct {
		Albums struct {
			Items []albumResponse `json:"items"`
		} `json:"albums"`
	}
	if err := c.get(ctx, "artist/get", params, &resp); err != nil {
		return nil, errors.Wrapf(err, "failed to get albums for artist %d", artistID)
	}

	albums := make([]music.Album, 0, len(resp.Albums.Items))
	for _, item := range resp.Albums.Items {
		albums = append(albums, item.toAlbum())
	}
	return albums, nil
}

// UserPlaylists retrieves the authenticated user's playlists.
func (c *Client) UserPlaylists(ctx context.Context) ([]music.Playlist, error) {
	params := url.Values{}
	params.Set("limit", "50")

	var resp struct {
		Playlists struct {
			Items []playlistResponse `json:"items"`
		} `json:"playlists"`
	}
	if err := c.get(ctx, "playlist/getUserPlaylists", params, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to get user playlists")
	}

	playlists := make([]music.Playlist, 0, len(resp.Playlists.Items))
	for _, item := range resp.Playlists.Items {
		playlists = append(playlists, item.toPlaylist())
	}
	return playlists, nil
}

// get performs a GET request against the API with auth headers, retrying
// transient failures with backoff, and decodes the JSON response into v.
// HTTP 404 is marked ErrNotFound; network errors and 5xx are marked
// ErrUnavailable.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<uint(attempt-1))
			zlog.Debug().Msgf("qobuz: retrying %s in %v (attempt %d/%d)", endpoint, delay, attempt+1, c.maxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.doGet(ctx, reqURL, v)
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.Is(err, protocol.ErrUnavailable) {
			return err
		}
	}
	return lastErr
}

func (c *Client) doGet(ctx context.Context, reqURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("X-App-Id", c.appID)
	req.Header.Set("X-User-Auth-Token", c.userToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "request failed"), protocol.ErrUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to read response body"), protocol.ErrUnavailable)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.Mark(errors.Newf("qobuz API returned 404"), protocol.ErrNotFound)
	case resp.StatusCode >= 500:
		return errors.Mark(errors.Newf("qobuz API returned %d", resp.StatusCode), protocol.ErrUnavailable)
	case resp.StatusCode != http.StatusOK:
		return errors.Newf("qobuz API returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}
