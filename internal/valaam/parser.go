package valaam

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/handiism/valaam-downloader/internal/config"
	"github.com/handiism/valaam-downloader/internal/model"
	"github.com/handiism/valaam-downloader/internal/valaam/dto"
	"github.com/rs/zerolog"
)

// Patterns used when none are configured.
const (
	DefaultOptionPattern   = config.DefaultOptionPattern
	DefaultPlaylistPattern = config.DefaultPlaylistPattern
)

// ErrNoResults is returned when a listing page contains no chant or album links.
//
// This typically occurs when:
//   - The URL does not point to a listing page
//   - The site markup has changed and the pattern no longer matches
var ErrNoResults = errors.New("no results")

// ErrPlaylistNotFound is reported when an album page has no player payload.
var ErrPlaylistNotFound = errors.New("playlist block not found")

// Parser extracts options and playlists from page HTML.
//
// Matching is textual: the option pattern must capture the href in group 1
// and the title in group 2; the playlist pattern must capture the JSON
// payload in group 1.
type Parser struct {
	optionRe   *regexp.Regexp
	playlistRe *regexp.Regexp
	logger     zerolog.Logger
}

// NewParser compiles the patterns once.
//
// The playlist pattern is compiled with dot-matches-newline because the
// payload usually spans several lines.
func NewParser(optionPattern, playlistPattern string, logger zerolog.Logger) (*Parser, error) {
	optionRe, err := regexp.Compile(optionPattern)
	if err != nil {
		return nil, fmt.Errorf("compile option pattern: %w", err)
	}
	if optionRe.NumSubexp() < 2 {
		return nil, fmt.Errorf("option pattern needs 2 capture groups, has %d", optionRe.NumSubexp())
	}

	playlistRe, err := regexp.Compile("(?s)" + playlistPattern)
	if err != nil {
		return nil, fmt.Errorf("compile playlist pattern: %w", err)
	}
	if playlistRe.NumSubexp() < 1 {
		return nil, errors.New("playlist pattern needs a capture group")
	}

	return &Parser{
		optionRe:   optionRe,
		playlistRe: playlistRe,
		logger:     logger.With().Str("component", "parser").Logger(),
	}, nil
}

// ParseOptions extracts title → href pairs from a chant or album listing.
//
// Matches are taken in document order. Returns ErrNoResults if nothing
// matches; an empty listing is never returned.
func (p *Parser) ParseOptions(htmlContent string) (*model.OptionMap, error) {
	matches := p.optionRe.FindAllStringSubmatch(htmlContent, -1)
	if len(matches) == 0 {
		return nil, ErrNoResults
	}

	options := model.NewOptionMap()
	for _, match := range matches {
		options.Set(match[2], match[1])
	}

	p.logger.Debug().Int("matches", len(matches)).Int("options", options.Len()).Msg("Extracted options")
	return options, nil
}

// ParsePlaylist extracts the album playlist from an album page.
//
// A missing payload or invalid JSON is logged as a warning and an empty
// playlist is returned.
func (p *Parser) ParsePlaylist(htmlContent string) model.Playlist {
	playlist, err := p.extractPlaylist(htmlContent)
	if err != nil {
		if errors.Is(err, ErrPlaylistNotFound) {
			p.logger.Warn().Msg("Playlist block not found")
		} else {
			p.logger.Warn().Err(err).Msg("Failed to parse playlist JSON")
		}
		return model.Playlist{}
	}

	p.logger.Debug().Int("tracks", len(playlist)).Msg("Extracted playlist")
	return playlist
}

// extractPlaylist returns the playlist of the first payload on the page.
func (p *Parser) extractPlaylist(htmlContent string) (model.Playlist, error) {
	match := p.playlistRe.FindStringSubmatch(htmlContent)
	if match == nil {
		return nil, ErrPlaylistNotFound
	}

	var payload dto.JSONPlaylist
	if err := json.Unmarshal([]byte(match[1]), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse playlist JSON: %w", err)
	}

	return payload.ToPlaylist(), nil
}
