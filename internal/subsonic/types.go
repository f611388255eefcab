package subsonic

import "fmt"

// envelope is the outer wrapper every Subsonic endpoint responds with.
type envelope struct {
	Response response `json:"subsonic-response"`
}

type response struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	Error         *APIError      `json:"error,omitempty"`
	RandomSongs   *songList      `json:"randomSongs,omitempty"`
	AlbumList2    *albumList     `json:"albumList2,omitempty"`
	Album         *Album         `json:"album,omitempty"`
	Playlists     *playlistList  `json:"playlists,omitempty"`
	Playlist      *Playlist      `json:"playlist,omitempty"`
	SearchResult3 *SearchResult  `json:"searchResult3,omitempty"`
	LyricsList    *lyricsListRes `json:"lyricsList,omitempty"`
}

// APIError is an application-level error reported inside a 200 response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("subsonic error %d: %s", e.Code, e.Message)
}

type songList struct {
	Song []Child `json:"song"`
}

type albumList struct {
	Album []Album `json:"album"`
}

type playlistList struct {
	Playlist []Playlist `json:"playlist"`
}

// Child is a track entry as the server reports it.
type Child struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	Duration int     `json:"duration"` // seconds
	Size     int64   `json:"size"`
	BitRate  int     `json:"bitRate"` // kbit/s
	Track    int     `json:"track"`
	CoverArt string  `json:"coverArt"`
	Starred  string  `json:"starred,omitempty"` // timestamp when starred
	Gain     float64 `json:"replayGain,omitempty"`

	ReplayGain *replayGain `json:"replayGainInfo,omitempty"`
}

type replayGain struct {
	TrackGain float64 `json:"trackGain"`
}

// GainDB returns the replay gain hint for the track, 0 when absent.
func (c Child) GainDB() float64 {
	if c.ReplayGain != nil {
		return c.ReplayGain.TrackGain
	}
	return c.Gain
}

// Album is an album with optional track listing.
type Album struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Artist    string  `json:"artist"`
	Year      int     `json:"year"`
	SongCount int     `json:"songCount"`
	Duration  int     `json:"duration"`
	CoverArt  string  `json:"coverArt"`
	Song      []Child `json:"song,omitempty"`
}

// Playlist is a playlist with optional entries.
type Playlist struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Owner     string  `json:"owner"`
	SongCount int     `json:"songCount"`
	Duration  int     `json:"duration"`
	Entry     []Child `json:"entry,omitempty"`
}

// SearchResult groups search3 hits by kind.
type SearchResult struct {
	Artist []Artist `json:"artist,omitempty"`
	Album  []Album  `json:"album,omitempty"`
	Song   []Child  `json:"song,omitempty"`
}

// Artist is an artist entry from search results.
type Artist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AlbumCount int    `json:"albumCount"`
}

type lyricsListRes struct {
	StructuredLyrics []StructuredLyrics `json:"structuredLyrics"`
}

// StructuredLyrics is one lyric document from getLyricsBySongId
// (OpenSubsonic extension). Synced documents carry per-line start times.
type StructuredLyrics struct {
	Lang   string      `json:"lang"`
	Synced bool        `json:"synced"`
	Offset int64       `json:"offset"` // milliseconds, applied to every line
	Line   []LyricLine `json:"line"`
}

// LyricLine is a single lyric line; Start is milliseconds from track start
// and only meaningful when the document is synced.
type LyricLine struct {
	Start int64  `json:"start"`
	Value string `json:"value"`
}
