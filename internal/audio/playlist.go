package audio

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files.
	FormatPLS

	// FormatWPL creates .wpl files.
	FormatWPL

	// FormatZPL creates .zpl files.
	FormatZPL
)

// ParsePlaylistFormat maps a configuration value (m3u, pls, wpl, zpl) to a
// PlaylistFormat. Unknown values fall back to M3U.
func ParsePlaylistFormat(name string) PlaylistFormat {
	switch strings.ToLower(name) {
	case "pls":
		return FormatPLS
	case "wpl":
		return FormatWPL
	case "zpl":
		return FormatZPL
	default:
		return FormatM3U
	}
}

// Extension returns the file extension for the format, including the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// PlaylistEntry is one downloaded track to list in a playlist file.
type PlaylistEntry struct {
	// Path is the track file path. Only its base name is written.
	Path   string
	Title  string
	Artist string
}

// PlaylistCreator generates playlist files for a downloaded album.
//
// Track paths in the playlist are relative (just the file name), so the
// playlist file belongs in the album folder.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist("Album", entries)
//	os.WriteFile(filepath.Join(folder, "Album"+FormatM3U.Extension()), []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:-1,Artist - Song Title
//	// Song Title.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// extended only applies to M3U.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the format the creator writes.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content for an album.
func (p *PlaylistCreator) CreatePlaylist(album string, entries []PlaylistEntry) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(entries)
	case FormatWPL:
		return p.createSMIL("wpl", "1.0", album, entries, false)
	case FormatZPL:
		return p.createSMIL("zpl", "2.0", album, entries, true)
	default:
		return p.createM3U(entries)
	}
}

// createM3U generates an M3U playlist. Track durations are not known
// before playback, so EXTINF lines use -1.
func (p *PlaylistCreator) createM3U(entries []PlaylistEntry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, entry := range entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:-1,%s\n", displayTitle(entry))
		}
		sb.WriteString(filepath.Base(entry.Path) + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist.
func (p *PlaylistCreator) createPLS(entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, entry := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, filepath.Base(entry.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, displayTitle(entry))
		fmt.Fprintf(&sb, "Length%d=-1\n", idx)
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createSMIL generates the XML playlists used by Windows Media Player (wpl)
// and Zune (zpl). Zune media elements carry title metadata.
func (p *PlaylistCreator) createSMIL(kind, version, album string, entries []PlaylistEntry, withMeta bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<?%s version=\"%s\"?>\n", kind, version)
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(album))
	if withMeta {
		sb.WriteString("    <meta name=\"Generator\" content=\"ValaamDownloader\"/>\n")
		fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	}
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")
	for _, entry := range entries {
		if withMeta {
			fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\"/>\n",
				escapeXML(filepath.Base(entry.Path)),
				escapeXML(album),
				escapeXML(entry.Title),
				escapeXML(entry.Artist))
			continue
		}
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(filepath.Base(entry.Path)))
	}
	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

func displayTitle(entry PlaylistEntry) string {
	if entry.Artist == "" {
		return entry.Title
	}
	return entry.Artist + " - " + entry.Title
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
