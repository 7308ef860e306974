package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/csmith/envflag/v2"
	"github.com/csmith/slogflags"

	"github.com/handiism/bandcamp-fetch/internal/client"
	"github.com/handiism/bandcamp-fetch/internal/config"
)

var (
	configPath  = flag.String("config", config.DefaultPath(), "Path to the settings file (TOML, JSON or YAML)")
	cookie      = flag.String("cookie", "", "Cookie header of a logged-in browser session (overrides settings)")
	output      = flag.String("output", "", "Output directory (overrides settings)")
	discography = flag.Bool("discography", false, "Download the whole discography of artist and label pages")
	playlist    = flag.Bool("playlist", false, "Create a playlist per release")
	verbose     = flag.Bool("verbose", false, "Show verbose download output")
	dryRun      = flag.Bool("dry-run", false, "Resolve releases without downloading")
	extra       = flag.Bool("extra", true, "Fetch additional data (streams of custom domains, fan summary)")
	searchType  = flag.String("type", "all", "Search type: all, artists, albums, tracks or fans")
	searchPage  = flag.Int("page", 1, "Search results page")
	pages       = flag.Int("pages", 1, "Number of extra pages to load with the sections command")
	forceType   = flag.String("as", "", "Force the page type when resolving: album, track, artist, label or fan")
)

const usage = `bandcamp-dl resolves Bandcamp pages and downloads releases.

Usage:
  bandcamp-dl [flags] download <url>...
  bandcamp-dl [flags] resolve <url>
  bandcamp-dl [flags] search <query>
  bandcamp-dl [flags] sections <fan url> <section>
  bandcamp-dl [flags] whoami
  bandcamp-dl [flags] <url>...       (same as download)

Sections: collection, wishlist, hidden, followers, following-artists, following-fans

Every flag can also be set through the environment, for example COOKIE or OUTPUT.

Flags:
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	envflag.Parse()
	logger := slogflags.Logger(slogflags.WithSetDefault(true))

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load settings", "path", *configPath, "error", err)
		os.Exit(1)
	}
	applyFlags(settings)

	c, err := client.NewFromSettings(settings, logger)
	if err != nil {
		logger.Error("Failed to create client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if isURL(cmd) {
		cmd, args = "download", flag.Args()
	}

	app := &app{settings: settings, client: c, logger: logger, out: os.Stdout}
	if err := app.run(ctx, cmd, args); err != nil {
		if ctx.Err() != nil {
			logger.Warn("Interrupted")
			os.Exit(130)
		}
		logger.Error("Command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func applyFlags(s *config.Settings) {
	if *cookie != "" {
		s.Cookie = *cookie
	}
	if *output != "" {
		s.DownloadsPath = filepath.Join(*output, "{artist}", "{album}")
	}
	if *discography {
		s.DownloadArtistDiscography = true
	}
	if *playlist {
		s.CreatePlaylist = true
	}
}
