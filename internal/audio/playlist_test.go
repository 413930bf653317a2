package audio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testEntries() []PlaylistEntry {
	return []PlaylistEntry{
		{Path: "/music/Album/Song1.mp3", Title: "Song1", Artist: "Choir"},
		{Path: "/music/Album/Song2.mp3", Title: "Song2"},
	}
}

func TestPlaylistCreator_M3U(t *testing.T) {
	content := NewPlaylistCreator(FormatM3U, false).CreatePlaylist("Album", testEntries())
	assert.Equal(t, "Song1.mp3\nSong2.mp3\n", content)
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	content := NewPlaylistCreator(FormatM3U, true).CreatePlaylist("Album", testEntries())

	assert.True(t, strings.HasPrefix(content, "#EXTM3U\n"))
	assert.Contains(t, content, "#EXTINF:-1,Choir - Song1\nSong1.mp3\n")
	assert.Contains(t, content, "#EXTINF:-1,Song2\nSong2.mp3\n")
}

func TestPlaylistCreator_PLS(t *testing.T) {
	content := NewPlaylistCreator(FormatPLS, false).CreatePlaylist("Album", testEntries())

	assert.True(t, strings.HasPrefix(content, "[playlist]"))
	assert.Contains(t, content, "File1=Song1.mp3")
	assert.Contains(t, content, "Title2=Song2")
	assert.Contains(t, content, "NumberOfEntries=2")
}

func TestPlaylistCreator_WPL(t *testing.T) {
	content := NewPlaylistCreator(FormatWPL, false).CreatePlaylist("Album", testEntries())

	assert.Contains(t, content, "<?wpl")
	assert.Contains(t, content, "<smil>")
	assert.Contains(t, content, `<media src="Song1.mp3"/>`)
	assert.NotContains(t, content, "albumTitle=")
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	content := NewPlaylistCreator(FormatZPL, false).CreatePlaylist("Album", testEntries())

	assert.Contains(t, content, "<?zpl")
	assert.Contains(t, content, `albumTitle="Album"`)
	assert.Contains(t, content, `<meta name="ItemCount" content="2"/>`)
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	entries := []PlaylistEntry{{Path: "Track & \"Quote\".mp3", Title: "Track & \"Quote\""}}
	content := NewPlaylistCreator(FormatZPL, false).CreatePlaylist("Album <Special>", entries)

	assert.NotContains(t, content, "<Special>")
	assert.Contains(t, content, "&lt;Special&gt;")
	assert.Contains(t, content, "Track &amp; &#34;Quote&#34;")
}

func TestParsePlaylistFormat(t *testing.T) {
	tests := []struct {
		name string
		want PlaylistFormat
		ext  string
	}{
		{"m3u", FormatM3U, ".m3u"},
		{"PLS", FormatPLS, ".pls"},
		{"wpl", FormatWPL, ".wpl"},
		{"zpl", FormatZPL, ".zpl"},
		{"unknown", FormatM3U, ".m3u"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePlaylistFormat(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ext, got.Extension())
		})
	}
}
