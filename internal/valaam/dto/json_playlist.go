package dto

import "github.com/handiism/valaam-downloader/internal/model"

// JSONPlaylist is the object passed to window.vmAudioPlayer.
type JSONPlaylist struct {
	Songs []JSONSong `json:"songs"`
}

// JSONSong represents one entry of the songs array.
type JSONSong struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Artist string `json:"artist"`
}

// ToTrack converts JSONSong to a model.Track.
func (js JSONSong) ToTrack() model.Track {
	return model.Track{
		Name:   js.Name,
		URL:    js.URL,
		Artist: js.Artist,
	}
}

// ToPlaylist converts the songs to a model.Playlist, keeping their order.
func (jp *JSONPlaylist) ToPlaylist() model.Playlist {
	playlist := make(model.Playlist, 0, len(jp.Songs))
	for _, song := range jp.Songs {
		playlist = append(playlist, song.ToTrack())
	}
	return playlist
}
