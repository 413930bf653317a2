package audio

import (
	"fmt"
	"strconv"

	"github.com/bogem/id3v2"
	"github.com/handiism/valaam-downloader/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty removes the frame.
	TagEmpty TagEditAction = iota

	// TagModify sets the frame from the playlist data.
	TagModify

	// TagDoNotModify leaves the existing frame unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
type TagConfig struct {
	// ModifyTags is a master switch. If false, SaveTags leaves the file untouched.
	ModifyTags bool

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// TrackNumber controls the TRCK (Track number) frame.
	TrackNumber TagEditAction
}

// DefaultTagConfig returns a configuration that sets all four frames.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		TrackTitle:  TagModify,
		Album:       TagModify,
		Artist:      TagModify,
		TrackNumber: TagModify,
	}
}

// Tagger writes ID3v2 tags to downloaded MP3 files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//
//	// After downloading track number 3 of an album
//	err := tagger.SaveTags(path, albumLabel, track, 3)
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes title, album, artist and track number to the file at path.
//
// Existing tags are parsed, updated and written back as ID3v2.4. A file
// without an ID3v2 header gets a new tag. The file itself must exist.
func (t *Tagger) SaveTags(path, album string, track model.Track, number int) error {
	if !t.config.ModifyTags {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags of %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	t.updateTextFrame(tag, "TIT2", t.config.TrackTitle, track.Name)
	t.updateTextFrame(tag, "TALB", t.config.Album, album)
	t.updateTextFrame(tag, "TPE1", t.config.Artist, track.Artist)
	t.updateTextFrame(tag, "TRCK", t.config.TrackNumber, strconv.Itoa(number))

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags of %s: %w", path, err)
	}
	return nil
}

func (t *Tagger) updateTextFrame(tag *id3v2.Tag, id string, action TagEditAction, value string) {
	switch action {
	case TagEmpty:
		tag.DeleteFrames(id)
	case TagModify:
		tag.AddTextFrame(id, tag.DefaultEncoding(), value)
	}
}
