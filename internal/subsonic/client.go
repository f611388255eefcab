// Package subsonic is a minimal client for the Subsonic/OpenSubsonic REST
// API: browsing, search, lyrics and listen reporting, plus URL builders for
// the endpoints that stream bytes rather than JSON.
package subsonic

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	apiVersion = "1.16.1"
	clientName = "tonearm"

	requestTimeout = 15 * time.Second
)

// Client talks to one Subsonic server. Safe for concurrent use.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

// authParams returns the common query parameters including a fresh
// salted-token credential pair. The password itself never goes on the wire.
func (c *Client) authParams() url.Values {
	salt := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	sum := md5.Sum([]byte(c.password + salt))

	q := url.Values{}
	q.Set("u", c.username)
	q.Set("t", hex.EncodeToString(sum[:]))
	q.Set("s", salt)
	q.Set("v", apiVersion)
	q.Set("c", clientName)
	q.Set("f", "json")
	return q
}

func (c *Client) endpoint(name string, q url.Values) string {
	return fmt.Sprintf("%s/rest/%s?%s", c.baseURL, name, q.Encode())
}

func (c *Client) get(ctx context.Context, name string, extra url.Values) (*response, error) {
	q := c.authParams()
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	u := c.endpoint(name, q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s: unexpected status %s", name, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", name, err)
	}
	if env.Response.Status != "ok" {
		if env.Response.Error != nil {
			return nil, fmt.Errorf("%s: %w", name, env.Response.Error)
		}
		return nil, fmt.Errorf("%s: server reported status %q", name, env.Response.Status)
	}
	return &env.Response, nil
}

// Ping verifies connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "ping", nil)
	return err
}

// GetRandomSongs fetches up to size random tracks.
func (c *Client) GetRandomSongs(ctx context.Context, size int) ([]Child, error) {
	q := url.Values{"size": {strconv.Itoa(size)}}
	r, err := c.get(ctx, "getRandomSongs", q)
	if err != nil {
		return nil, err
	}
	if r.RandomSongs == nil {
		return nil, nil
	}
	return r.RandomSongs.Song, nil
}

// GetAlbumList lists albums ordered by listType (e.g. "newest", "random",
// "frequent", "alphabeticalByName").
func (c *Client) GetAlbumList(ctx context.Context, listType string, size, offset int) ([]Album, error) {
	q := url.Values{
		"type":   {listType},
		"size":   {strconv.Itoa(size)},
		"offset": {strconv.Itoa(offset)},
	}
	r, err := c.get(ctx, "getAlbumList2", q)
	if err != nil {
		return nil, err
	}
	if r.AlbumList2 == nil {
		return nil, nil
	}
	return r.AlbumList2.Album, nil
}

// GetAlbum fetches one album with its track listing.
func (c *Client) GetAlbum(ctx context.Context, id string) (*Album, error) {
	r, err := c.get(ctx, "getAlbum", url.Values{"id": {id}})
	if err != nil {
		return nil, err
	}
	if r.Album == nil {
		return nil, fmt.Errorf("getAlbum: empty response for id %s", id)
	}
	return r.Album, nil
}

// GetPlaylists lists the user's playlists.
func (c *Client) GetPlaylists(ctx context.Context) ([]Playlist, error) {
	r, err := c.get(ctx, "getPlaylists", nil)
	if err != nil {
		return nil, err
	}
	if r.Playlists == nil {
		return nil, nil
	}
	return r.Playlists.Playlist, nil
}

// GetPlaylist fetches one playlist with its entries.
func (c *Client) GetPlaylist(ctx context.Context, id string) (*Playlist, error) {
	r, err := c.get(ctx, "getPlaylist", url.Values{"id": {id}})
	if err != nil {
		return nil, err
	}
	if r.Playlist == nil {
		return nil, fmt.Errorf("getPlaylist: empty response for id %s", id)
	}
	return r.Playlist, nil
}

// Search runs search3 across artists, albums and songs.
func (c *Client) Search(ctx context.Context, query string, count int) (*SearchResult, error) {
	q := url.Values{
		"query":       {query},
		"artistCount": {strconv.Itoa(count)},
		"albumCount":  {strconv.Itoa(count)},
		"songCount":   {strconv.Itoa(count)},
	}
	r, err := c.get(ctx, "search3", q)
	if err != nil {
		return nil, err
	}
	if r.SearchResult3 == nil {
		return &SearchResult{}, nil
	}
	return r.SearchResult3, nil
}

// Lyrics fetches structured lyrics for a track, preferring a synced
// document. Returns nil with no error when the server has none.
func (c *Client) Lyrics(ctx context.Context, trackID string) (*StructuredLyrics, error) {
	r, err := c.get(ctx, "getLyricsBySongId", url.Values{"id": {trackID}})
	if err != nil {
		return nil, err
	}
	if r.LyricsList == nil || len(r.LyricsList.StructuredLyrics) == 0 {
		return nil, nil
	}
	docs := r.LyricsList.StructuredLyrics
	for i := range docs {
		if docs[i].Synced {
			return &docs[i], nil
		}
	}
	return &docs[0], nil
}

// Scrobble reports a listen. submission=false marks the track as now
// playing; submission=true registers a completed play.
func (c *Client) Scrobble(ctx context.Context, trackID string, submission bool) error {
	q := url.Values{
		"id":         {trackID},
		"submission": {strconv.FormatBool(submission)},
		"time":       {strconv.FormatInt(time.Now().UnixMilli(), 10)},
	}
	_, err := c.get(ctx, "scrobble", q)
	return err
}

// Star marks a track as favorite.
func (c *Client) Star(ctx context.Context, trackID string) error {
	_, err := c.get(ctx, "star", url.Values{"id": {trackID}})
	return err
}

// Unstar removes a track from favorites.
func (c *Client) Unstar(ctx context.Context, trackID string) error {
	_, err := c.get(ctx, "unstar", url.Values{"id": {trackID}})
	return err
}

// StreamURL builds the raw audio URL for a track, credentials included.
// Suitable for handing to an HTTP range fetcher.
func (c *Client) StreamURL(trackID string) string {
	q := c.authParams()
	q.Set("id", trackID)
	q.Set("format", "mp3")
	return c.endpoint("stream", q)
}

// CoverArtURL builds the cover art URL for an item at the given pixel size.
func (c *Client) CoverArtURL(coverID string, size int) string {
	q := c.authParams()
	q.Set("id", coverID)
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	return c.endpoint("getCoverArt", q)
}

// LogServer logs which server and user the client is bound to, with the
// password elided.
func (c *Client) LogServer() {
	slog.Info("subsonic client configured", "server", c.baseURL, "user", c.username)
}
