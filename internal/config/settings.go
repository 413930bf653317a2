package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "ValaamDownloader"

const (
	// DefaultOptionPattern matches chant and album links on listing pages.
	// Group 1 is the href, group 2 the title.
	DefaultOptionPattern = `<a\s+href="([^"]+)"[^>]*\s+class="chants-title[^"]*"\s+title="([^"]+)">`

	// DefaultPlaylistPattern matches the player payload on album pages.
	// Group 1 is the JSON object. It is compiled with dot-matches-newline.
	DefaultPlaylistPattern = `window\.vmAudioPlayer\((\{.*?\})\);`
)

// Settings holds all configuration options.
type Settings struct {
	// Site settings
	ChantsURL       string `mapstructure:"chants_url" json:"chants_url"`
	UserAgent       string `mapstructure:"user_agent" json:"user_agent"`
	OptionPattern   string `mapstructure:"option_pattern" json:"option_pattern"`
	PlaylistPattern string `mapstructure:"playlist_pattern" json:"playlist_pattern"`

	// HTTP settings
	PageTimeout     time.Duration `mapstructure:"page_timeout" json:"page_timeout"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout" json:"download_timeout"` // 0 disables the timeout

	// Download settings
	DownloadsPath string `mapstructure:"downloads_path" json:"downloads_path"`
	SanitizeNames bool   `mapstructure:"sanitize_names" json:"sanitize_names"`

	// Playlist settings
	CreatePlaylist bool   `mapstructure:"create_playlist" json:"create_playlist"`
	PlaylistFormat string `mapstructure:"playlist_format" json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `mapstructure:"m3u_extended" json:"m3u_extended"`

	// Tag settings
	ModifyTags bool `mapstructure:"modify_tags" json:"modify_tags"`

	// Interface settings
	ClearScreen bool   `mapstructure:"clear_screen" json:"clear_screen"`
	ProgressUI  bool   `mapstructure:"progress_ui" json:"progress_ui"`
	LogLevel    string `mapstructure:"log_level" json:"log_level"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		ChantsURL:       "https://valaam.ru/chants/",
		UserAgent:       DefaultUserAgent,
		OptionPattern:   DefaultOptionPattern,
		PlaylistPattern: DefaultPlaylistPattern,

		PageTimeout:     10 * time.Second,
		DownloadTimeout: 0,

		DownloadsPath: "downloads",
		SanitizeNames: true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		ModifyTags: true,

		ClearScreen: true,
		ProgressUI:  true,
		LogLevel:    "info",
	}
}

// flagKeys maps command line flag names to settings keys.
var flagKeys = map[string]string{
	"chants-url": "chants_url",
	"output":     "downloads_path",
	"log-level":  "log_level",
	"playlist":   "create_playlist",
}

// negatedFlags maps "--no-*" boolean flags to the settings key they switch off.
var negatedFlags = map[string]string{
	"no-progress-ui": "progress_ui",
	"no-sanitize":    "sanitize_names",
	"no-clear":       "clear_screen",
}

// Load reads settings from an optional file, the environment and flags.
//
// Precedence is flags > VALAAM_* environment variables > file > defaults.
// A missing file is not an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Settings, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if flags != nil {
		applyNegatedFlags(settings, flags)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("VALAAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, value := range settingsMap(DefaultSettings()) {
		v.SetDefault(key, value)
	}

	return v
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func applyNegatedFlags(s *Settings, flags *pflag.FlagSet) {
	for name, key := range negatedFlags {
		if !flags.Changed(name) {
			continue
		}
		off, err := flags.GetBool(name)
		if err != nil || !off {
			continue
		}
		switch key {
		case "progress_ui":
			s.ProgressUI = false
		case "sanitize_names":
			s.SanitizeNames = false
		case "clear_screen":
			s.ClearScreen = false
		}
	}
}

// Validate checks that the settings can be used.
func (s *Settings) Validate() error {
	if _, err := s.BaseURL(); err != nil {
		return err
	}
	if s.DownloadsPath == "" {
		return errors.New("downloads_path must not be empty")
	}
	if s.PageTimeout < 0 || s.DownloadTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// BaseURL returns the site origin (scheme://host) derived from ChantsURL.
//
// Relative links found on the site are resolved against it.
func (s *Settings) BaseURL() (*url.URL, error) {
	u, err := url.Parse(s.ChantsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid chants_url %q: %w", s.ChantsURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid chants_url %q: scheme and host are required", s.ChantsURL)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

// Save writes settings to a file. The format follows the file extension
// (json, yaml, toml).
func (s *Settings) Save(path string) error {
	v := viper.New()
	for key, value := range settingsMap(s) {
		v.Set(key, value)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// settingsMap flattens settings into viper keys. Durations are stored as
// strings so that written files stay human readable.
func settingsMap(s *Settings) map[string]any {
	return map[string]any{
		"chants_url":       s.ChantsURL,
		"user_agent":       s.UserAgent,
		"option_pattern":   s.OptionPattern,
		"playlist_pattern": s.PlaylistPattern,
		"page_timeout":     s.PageTimeout.String(),
		"download_timeout": s.DownloadTimeout.String(),
		"downloads_path":   s.DownloadsPath,
		"sanitize_names":   s.SanitizeNames,
		"create_playlist":  s.CreatePlaylist,
		"playlist_format":  s.PlaylistFormat,
		"m3u_extended":     s.M3UExtended,
		"modify_tags":      s.ModifyTags,
		"clear_screen":     s.ClearScreen,
		"progress_ui":      s.ProgressUI,
		"log_level":        s.LogLevel,
	}
}

// NewLogger builds the console logger used across the application.
//
// An invalid level falls back to info and is reported as a warning.
func NewLogger(level string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
	}).With().Timestamp().Logger()

	parsed := zerolog.InfoLevel
	if level != "" {
		if l, err := zerolog.ParseLevel(level); err == nil {
			parsed = l
		} else {
			logger.Warn().Str("invalid_level", level).Msg("Invalid log level, using default 'info'")
		}
	}

	return logger.Level(parsed)
}
