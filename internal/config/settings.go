package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load, as in
// BANDCAMP_COOKIE or BANDCAMP_DOWNLOADS_PATH.
const EnvPrefix = "BANDCAMP"

// Settings holds all configuration options.
type Settings struct {
	// Session and transport
	Cookie            string        `mapstructure:"cookie" toml:"cookie,omitempty"`
	UserAgent         string        `mapstructure:"user_agent" toml:"user_agent"`
	MaxRedirects      int           `mapstructure:"max_redirects" toml:"max_redirects"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" toml:"requests_per_second"`
	CrumbTTL          time.Duration `mapstructure:"crumb_ttl" toml:"crumb_ttl"`

	// Download settings
	DownloadsPath               string   `mapstructure:"downloads_path" toml:"downloads_path"`
	AudioFormats                []string `mapstructure:"audio_formats" toml:"audio_formats"`
	MaxConcurrentAlbumsDownload int      `mapstructure:"max_concurrent_albums" toml:"max_concurrent_albums"`
	MaxConcurrentTracksDownload int      `mapstructure:"max_concurrent_tracks" toml:"max_concurrent_tracks"`
	DownloadMaxRetries          int      `mapstructure:"download_max_retries" toml:"download_max_retries"`
	DownloadRetryCooldown       float64  `mapstructure:"download_retry_cooldown" toml:"download_retry_cooldown"`
	DownloadRetryExponent       float64  `mapstructure:"download_retry_exponent" toml:"download_retry_exponent"`
	AllowedFileSizeDifference   float64  `mapstructure:"allowed_file_size_difference" toml:"allowed_file_size_difference"`
	DownloadArtistDiscography   bool     `mapstructure:"download_artist_discography" toml:"download_artist_discography"`

	// File naming
	FileNameFormat         string `mapstructure:"file_name_format" toml:"file_name_format"`
	CoverArtFileNameFormat string `mapstructure:"cover_art_file_name_format" toml:"cover_art_file_name_format"`
	PlaylistFileNameFormat string `mapstructure:"playlist_file_name_format" toml:"playlist_file_name_format"`

	// Cover art settings
	SaveCoverArtInFolder    bool `mapstructure:"save_cover_art_in_folder" toml:"save_cover_art_in_folder"`
	SaveCoverArtInTags      bool `mapstructure:"save_cover_art_in_tags" toml:"save_cover_art_in_tags"`
	CoverArtInFolderResize  bool `mapstructure:"cover_art_in_folder_resize" toml:"cover_art_in_folder_resize"`
	CoverArtInFolderMaxSize int  `mapstructure:"cover_art_in_folder_max_size" toml:"cover_art_in_folder_max_size"`
	CoverArtInTagsResize    bool `mapstructure:"cover_art_in_tags_resize" toml:"cover_art_in_tags_resize"`
	CoverArtInTagsMaxSize   int  `mapstructure:"cover_art_in_tags_max_size" toml:"cover_art_in_tags_max_size"`
	ConvertCoverArtToJPG    bool `mapstructure:"convert_cover_art_to_jpg" toml:"convert_cover_art_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `mapstructure:"create_playlist" toml:"create_playlist"`
	PlaylistFormat string `mapstructure:"playlist_format" toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `mapstructure:"m3u_extended" toml:"m3u_extended"`

	// Tag settings
	ModifyTags bool `mapstructure:"modify_tags" toml:"modify_tags"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		MaxRedirects: 10,
		CrumbTTL:     5 * time.Minute,

		DownloadsPath:               filepath.Join(homeDir, "Music", "Bandcamp", "{artist}", "{album}"),
		AudioFormats:                []string{"flac", "mp3-320", "mp3-v0", "mp3-128"},
		MaxConcurrentAlbumsDownload: 1,
		MaxConcurrentTracksDownload: 10,
		DownloadMaxRetries:          7,
		DownloadRetryCooldown:       0.2,
		DownloadRetryExponent:       4.0,
		AllowedFileSizeDifference:   0.05,
		DownloadArtistDiscography:   false,

		FileNameFormat:         "{tracknum} {artist} - {title}.{ext}",
		CoverArtFileNameFormat: "{album}",
		PlaylistFileNameFormat: "{album}",

		SaveCoverArtInFolder:    false,
		SaveCoverArtInTags:      true,
		CoverArtInFolderResize:  false,
		CoverArtInFolderMaxSize: 1000,
		CoverArtInTagsResize:    true,
		CoverArtInTagsMaxSize:   1000,
		ConvertCoverArtToJPG:    true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		ModifyTags: true,
	}
}

// DefaultPath returns the settings file used when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "bandcamp-fetch.toml"
	}
	return filepath.Join(dir, "bandcamp-fetch", "config.toml")
}

// Load reads settings from path, then from BANDCAMP_* environment
// variables, which win. A .env file in the working directory is loaded
// into the environment first. A missing settings file is not an error.
// The file format follows its extension: TOML, JSON or YAML.
func Load(path string) (*Settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, DefaultSettings())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("toml")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read settings %s: %w", path, err)
			}
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

// setDefaults registers every field of d so that AutomaticEnv can see
// the key even when no settings file mentions it.
func setDefaults(v *viper.Viper, d *Settings) {
	v.SetDefault("cookie", d.Cookie)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("max_redirects", d.MaxRedirects)
	v.SetDefault("requests_per_second", d.RequestsPerSecond)
	v.SetDefault("crumb_ttl", d.CrumbTTL)

	v.SetDefault("downloads_path", d.DownloadsPath)
	v.SetDefault("audio_formats", d.AudioFormats)
	v.SetDefault("max_concurrent_albums", d.MaxConcurrentAlbumsDownload)
	v.SetDefault("max_concurrent_tracks", d.MaxConcurrentTracksDownload)
	v.SetDefault("download_max_retries", d.DownloadMaxRetries)
	v.SetDefault("download_retry_cooldown", d.DownloadRetryCooldown)
	v.SetDefault("download_retry_exponent", d.DownloadRetryExponent)
	v.SetDefault("allowed_file_size_difference", d.AllowedFileSizeDifference)
	v.SetDefault("download_artist_discography", d.DownloadArtistDiscography)

	v.SetDefault("file_name_format", d.FileNameFormat)
	v.SetDefault("cover_art_file_name_format", d.CoverArtFileNameFormat)
	v.SetDefault("playlist_file_name_format", d.PlaylistFileNameFormat)

	v.SetDefault("save_cover_art_in_folder", d.SaveCoverArtInFolder)
	v.SetDefault("save_cover_art_in_tags", d.SaveCoverArtInTags)
	v.SetDefault("cover_art_in_folder_resize", d.CoverArtInFolderResize)
	v.SetDefault("cover_art_in_folder_max_size", d.CoverArtInFolderMaxSize)
	v.SetDefault("cover_art_in_tags_resize", d.CoverArtInTagsResize)
	v.SetDefault("cover_art_in_tags_max_size", d.CoverArtInTagsMaxSize)
	v.SetDefault("convert_cover_art_to_jpg", d.ConvertCoverArtToJPG)

	v.SetDefault("create_playlist", d.CreatePlaylist)
	v.SetDefault("playlist_format", d.PlaylistFormat)
	v.SetDefault("m3u_extended", d.M3UExtended)

	v.SetDefault("modify_tags", d.ModifyTags)
}

// Save writes settings to path as TOML.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
