// Package valaam extracts chant, album and playlist information from the
// pages of the Valaam monastery chant site.
//
// The site has a three level hierarchy: a listing of chants, a page per
// chant listing its albums, and an album page embedding a player payload.
//
// # Option Extraction
//
// Chant and album listings use the same anchor markup, so one pattern
// serves both:
//
//	parser, err := valaam.NewParser(valaam.DefaultOptionPattern, valaam.DefaultPlaylistPattern, logger)
//	chants, err := parser.ParseOptions(listingHTML)
//	if errors.Is(err, valaam.ErrNoResults) {
//	    // nothing to choose from
//	}
//
// # Playlist Extraction
//
// Album pages call the player with a JSON object:
//
//	window.vmAudioPlayer({"songs":[{"name":"...","url":"/upload/...mp3","artist":"..."}]});
//
// ParsePlaylist returns the songs in page order. A missing or malformed
// payload is logged and yields an empty playlist.
package valaam
