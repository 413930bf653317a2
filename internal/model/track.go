package model

// Track represents a single song of an album playlist.
//
// Name is used both as the ID3 title and as the file name stem. URL may be
// absolute or relative to the site origin.
type Track struct {
	Name   string
	URL    string
	Artist string
}

// Playlist is the ordered list of tracks of one album.
//
// The position of a track (1-based) is its track number.
type Playlist []Track

// Len returns the number of tracks.
func (p Playlist) Len() int {
	return len(p)
}

// Find returns the first track named name together with its 1-based number.
//
// Names are not guaranteed to be unique on the site; when several tracks
// share a name the earliest one wins.
func (p Playlist) Find(name string) (Track, int, bool) {
	for i, track := range p {
		if track.Name == name {
			return track, i + 1, true
		}
	}
	return Track{}, 0, false
}

// Options builds a name → URL menu from the playlist.
//
// Duplicate names collapse into one entry holding the URL of the last
// track with that name.
func (p Playlist) Options() *OptionMap {
	opts := NewOptionMap()
	for _, track := range p {
		opts.Set(track.Name, track.URL)
	}
	return opts
}
