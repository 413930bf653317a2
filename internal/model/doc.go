// Package model defines the core data structures used throughout
// the valaam-downloader application.
//
// # OptionMap
//
// OptionMap is an ordered label → link mapping built from a listing page:
//
//	opts := model.NewOptionMap()
//	opts.Set("Znamenny chant", "/chants/znamenny/")
//	label, link := opts.At(0)
//
// # Track and Playlist
//
// Track is one song from an album's player payload. Playlist keeps the
// payload order, which defines the 1-based track numbers:
//
//	track, number, ok := playlist.Find("Song1")
//
// # Download targets
//
// AlbumFolder and TrackPath compute where files are written:
//
//	folder := model.AlbumFolder("downloads", "Album", true)
//	path := model.TrackPath(folder, "Song1", true) // downloads/Album/Song1.mp3
package model
