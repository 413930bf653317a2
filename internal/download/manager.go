package download

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/valaam-downloader/internal/audio"
	"github.com/handiism/valaam-downloader/internal/config"
	"github.com/handiism/valaam-downloader/internal/http"
	ioutils "github.com/handiism/valaam-downloader/internal/io"
	"github.com/handiism/valaam-downloader/internal/menu"
	"github.com/handiism/valaam-downloader/internal/model"
	"github.com/handiism/valaam-downloader/internal/valaam"
	"github.com/rs/zerolog"
)

// DownloadAllPrompt asks whether the whole playlist should be downloaded.
const DownloadAllPrompt = "Do you want to download the entire playlist? (y/n): "

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
//
// Current and Total count finished and planned tracks; both are zero for
// events that are not tied to a track.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Current int
	Total   int
}

// Fetcher retrieves pages and files. *http.Client implements it.
type Fetcher interface {
	GetString(ctx context.Context, url string) (string, error)
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
}

// Tagger writes metadata to a downloaded file. *audio.Tagger implements it.
type Tagger interface {
	SaveTags(path, album string, track model.Track, number int) error
}

// Selector asks the user to choose. *menu.Selector implements it.
type Selector interface {
	Select(options *model.OptionMap) (link, label string, err error)
	Confirm(question string) (bool, error)
	Clear()
}

// Dependencies are the collaborators of a Manager. Nil fields are built
// from the settings, except Selector which defaults to stdin/stdout.
type Dependencies struct {
	Fetcher  Fetcher
	Parser   *valaam.Parser
	Tagger   Tagger
	Selector Selector
	Logger   *zerolog.Logger
}

// Selection is the outcome of the interactive part of a run.
type Selection struct {
	Chant    string
	Album    string
	Playlist model.Playlist

	// All is true when the whole playlist should be downloaded.
	All bool

	// Track and Link name the single track chosen when All is false.
	Track string
	Link  string
}

// Result summarizes an Execute call.
type Result struct {
	Album      string
	Folder     string
	Downloaded []string
	Failed     []string
}

// Manager drives a run: chant and album menus, playlist extraction, then
// downloading and tagging one track or the whole album.
type Manager struct {
	settings *config.Settings
	origin   *url.URL

	fetcher  Fetcher
	parser   *valaam.Parser
	tagger   Tagger
	selector Selector
	playlist *audio.PlaylistCreator
	logger   zerolog.Logger

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, deps Dependencies, onProgress func(ProgressEvent)) (*Manager, error) {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	origin, err := settings.BaseURL()
	if err != nil {
		return nil, err
	}

	base := zerolog.Nop()
	if deps.Logger != nil {
		base = *deps.Logger
	}
	logger := base.With().Str("component", "download").Logger()

	m := &Manager{
		settings:   settings,
		origin:     origin,
		fetcher:    deps.Fetcher,
		parser:     deps.Parser,
		tagger:     deps.Tagger,
		selector:   deps.Selector,
		playlist:   audio.NewPlaylistCreator(audio.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		logger:     logger,
		onProgress: onProgress,
	}

	if m.fetcher == nil {
		m.fetcher = http.NewClient(http.Options{
			PageTimeout:     settings.PageTimeout,
			DownloadTimeout: settings.DownloadTimeout,
			UserAgent:       settings.UserAgent,
		})
	}
	if m.parser == nil {
		m.parser, err = valaam.NewParser(settings.OptionPattern, settings.PlaylistPattern, base)
		if err != nil {
			return nil, err
		}
	}
	if m.tagger == nil {
		tagConfig := audio.DefaultTagConfig()
		tagConfig.ModifyTags = settings.ModifyTags
		m.tagger = audio.NewTagger(tagConfig)
	}
	if m.selector == nil {
		selector := menu.NewSelector(os.Stdin, os.Stdout)
		selector.SetClearScreen(settings.ClearScreen)
		m.selector = selector
	}

	return m, nil
}

// Run performs Select followed by Execute.
//
// menu.ErrQuit is returned unchanged when the user quits at any prompt.
func (m *Manager) Run(ctx context.Context) (*Result, error) {
	sel, err := m.Select(ctx)
	if err != nil {
		return nil, err
	}
	return m.Execute(ctx, sel)
}

// Select walks the chant and album menus, fetches the album playlist and
// asks whether to download all of it or which track to download. All
// reading from the user happens here, so Execute never blocks on input.
func (m *Manager) Select(ctx context.Context) (*Selection, error) {
	chants, err := m.fetchOptions(ctx, m.settings.ChantsURL)
	if err != nil {
		return nil, err
	}

	m.selector.Clear()
	chantLink, chant, err := m.selector.Select(chants)
	if err != nil {
		return nil, err
	}
	m.selector.Clear()
	m.logger.Debug().Str("chant", chant).Str("link", chantLink).Msg("Chant selected")

	albums, err := m.fetchOptions(ctx, m.resolve(chantLink))
	if err != nil {
		return nil, err
	}

	albumLink, album, err := m.selector.Select(albums)
	if err != nil {
		return nil, err
	}
	m.selector.Clear()
	m.logger.Debug().Str("album", album).Str("link", albumLink).Msg("Album selected")

	albumURL := m.resolve(albumLink)
	html, err := m.fetcher.GetString(ctx, albumURL)
	if err != nil {
		return nil, fmt.Errorf("fetch album page: %w", err)
	}

	sel := &Selection{
		Chant:    chant,
		Album:    album,
		Playlist: m.parser.ParsePlaylist(html),
	}
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Found album: %s (%d tracks)", album, sel.Playlist.Len()),
		Level:   LevelVerbose,
	})

	if sel.Playlist.Len() == 0 {
		return sel, nil
	}

	sel.All, err = m.selector.Confirm(DownloadAllPrompt)
	if err != nil {
		return nil, err
	}
	if !sel.All {
		if sel.Link, sel.Track, err = m.selector.Select(sel.Playlist.Options()); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

// fetchOptions fetches a listing page and extracts its links.
func (m *Manager) fetchOptions(ctx context.Context, pageURL string) (*model.OptionMap, error) {
	html, err := m.fetcher.GetString(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	options, err := m.parser.ParseOptions(html)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	m.logger.Debug().Str("url", pageURL).Int("count", options.Len()).Msg("Options extracted")
	return options, nil
}

// Execute downloads the selection. Failures of single tracks are reported
// as progress events and do not stop the run.
func (m *Manager) Execute(ctx context.Context, sel *Selection) (*Result, error) {
	folder := model.AlbumFolder(m.settings.DownloadsPath, sel.Album, m.settings.SanitizeNames)
	result := &Result{Album: sel.Album, Folder: folder}

	if sel.Playlist.Len() == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("No tracks found for %s", sel.Album), Level: LevelWarning})
		return result, nil
	}

	if sel.All {
		return result, m.downloadAll(ctx, sel, result)
	}
	if err := m.downloadOne(ctx, sel, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Manager) downloadAll(ctx context.Context, sel *Selection, result *Result) error {
	if err := ioutils.EnsureDir(result.Folder); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return err
	}

	total := sel.Playlist.Len()
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloading %d songs to %s", total, result.Folder), Level: LevelInfo, Total: total})

	var entries []audio.PlaylistEntry
	for i, track := range sel.Playlist {
		if err := ctx.Err(); err != nil {
			return err
		}

		number := i + 1
		path, _, err := m.downloadTrack(ctx, sel.Album, track, track.URL, number)
		if err != nil {
			result.Failed = append(result.Failed, track.Name)
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Error downloading %s: %v", track.Name, err),
				Level:   LevelError,
				Current: number,
				Total:   total,
			})
			continue
		}

		result.Downloaded = append(result.Downloaded, path)
		entries = append(entries, audio.PlaylistEntry{Path: path, Title: track.Name, Artist: track.Artist})
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Downloaded: %s", filepath.Base(path)),
			Level:   LevelVerbose,
			Current: number,
			Total:   total,
		})
	}

	if m.settings.CreatePlaylist && len(entries) > 0 {
		m.writePlaylist(ctx, sel.Album, result.Folder, entries)
	}

	if len(result.Failed) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded album: %s", sel.Album), Level: LevelSuccess, Current: total, Total: total})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, %d of %d tracks failed", sel.Album, len(result.Failed), total), Level: LevelWarning, Current: total, Total: total})
	}
	return nil
}

// downloadOne downloads the chosen track. The file comes from the chosen
// menu value; artist and track number come from the first playlist entry
// with that name. If no track was chosen yet the user is asked.
func (m *Manager) downloadOne(ctx context.Context, sel *Selection, result *Result) error {
	link, name := sel.Link, sel.Track
	if name == "" {
		var err error
		if link, name, err = m.selector.Select(sel.Playlist.Options()); err != nil {
			return err
		}
	}

	track, number, ok := sel.Playlist.Find(name)
	if !ok {
		track, number = model.Track{Name: name, URL: link}, 1
	}

	if err := ioutils.EnsureDir(result.Folder); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return err
	}

	path, tagErr, err := m.downloadTrack(ctx, sel.Album, track, link, number)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		result.Failed = append(result.Failed, name)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", name, err), Level: LevelError})
		return nil
	}

	result.Downloaded = append(result.Downloaded, path)
	if tagErr != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded %s without metadata", path), Level: LevelWarning, Current: 1, Total: 1})
		return nil
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded and added metadata to %s", path), Level: LevelSuccess, Current: 1, Total: 1})
	return nil
}

// downloadTrack fetches link into the album folder and tags it. A tagging
// failure is reported and returned as tagErr; the file is kept.
func (m *Manager) downloadTrack(ctx context.Context, album string, track model.Track, link string, number int) (path string, tagErr, err error) {
	folder := model.AlbumFolder(m.settings.DownloadsPath, album, m.settings.SanitizeNames)
	path = model.TrackPath(folder, track.Name, m.settings.SanitizeNames)
	source := m.resolve(link)

	m.logger.Debug().Str("url", source).Str("path", path).Int("number", number).Msg("Downloading track")

	if err := m.fetcher.DownloadFile(ctx, source, path, nil); err != nil {
		m.logger.Warn().Err(err).Str("url", source).Msg("Track download failed")
		return "", nil, err
	}

	if err := m.tagger.SaveTags(path, album, track, number); err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("Tagging failed")
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", track.Name, err), Level: LevelWarning})
		return path, err, nil
	}
	return path, nil, nil
}

func (m *Manager) writePlaylist(ctx context.Context, album, folder string, entries []audio.PlaylistEntry) {
	name := album
	if m.settings.SanitizeNames {
		name = model.SanitizeFileName(name)
	}
	path := filepath.Join(folder, name+m.playlist.Format().Extension())

	content := m.playlist.CreatePlaylist(album, entries)
	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", album), Level: LevelSuccess})
}

// resolve turns a site link into an absolute URL. Absolute http(s) links
// are kept; anything else is resolved against the site origin.
func (m *Manager) resolve(link string) string {
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}

	ref, err := url.Parse(link)
	if err != nil {
		return strings.TrimSuffix(m.origin.String(), "/") + link
	}
	return m.origin.ResolveReference(ref).String()
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

// IsQuit reports whether err means the user asked to stop.
func IsQuit(err error) bool {
	return errors.Is(err, menu.ErrQuit)
}
