// Package config loads and saves the settings shared by the CLI and the
// TUI.
//
// Settings come from three places, later ones winning:
//
//   - DefaultSettings
//   - a settings file (TOML, JSON or YAML, picked by extension)
//   - BANDCAMP_* environment variables, optionally from a .env file
//
// For example BANDCAMP_COOKIE seeds the session with a logged-in
// browser's Cookie header and BANDCAMP_REQUESTS_PER_SECOND throttles the
// transport.
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Save always writes TOML:
//
//	settings.DownloadsPath = "/custom/path/{artist}/{album}"
//	err := settings.Save(config.DefaultPath())
package config
