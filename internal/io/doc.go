// Package ioutils provides file system helpers for the downloader.
//
// This package contains functions for:
//   - Creating album folders
//   - Writing small generated files (playlists) atomically
//
//	// Ensure the album folder exists
//	err := ioutils.EnsureDir("downloads/Pascha")
//
//	// Replace a playlist without leaving a half-written file behind
//	err = ioutils.WriteFile(ctx, "downloads/Pascha/Pascha.m3u", []byte("#EXTM3U\n..."))
//
// Audio files are streamed by the http package and are not handled here.
package ioutils
