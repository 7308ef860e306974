package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/handiism/bandcamp-fetch/internal/client"
	"github.com/handiism/bandcamp-fetch/internal/config"
	"github.com/handiism/bandcamp-fetch/internal/download"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

var errUsage = errors.New("invalid arguments, see -help")

type app struct {
	settings *config.Settings
	client   *client.Client
	logger   *slog.Logger
	out      io.Writer
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "download":
		if len(args) == 0 {
			return errUsage
		}
		return a.download(ctx, strings.Join(args, "\n"))
	case "resolve":
		if len(args) != 1 {
			return errUsage
		}
		return a.resolve(ctx, args[0])
	case "search":
		if len(args) == 0 {
			return errUsage
		}
		return a.search(ctx, strings.Join(args, " "))
	case "sections":
		if len(args) != 2 {
			return errUsage
		}
		return a.sections(ctx, args[0], client.SectionKind(args[1]))
	case "whoami":
		return a.whoami(ctx)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) resolve(ctx context.Context, rawURL string) error {
	opts := client.ResolveOptions{FetchAdditionalData: *extra}
	if *forceType != "" {
		opts.ForceType = model.ItemType(*forceType)
	}
	entity, err := a.client.Resolve(ctx, rawURL, opts)
	if err != nil {
		return err
	}
	return a.printJSON(entity)
}

func (a *app) search(ctx context.Context, query string) error {
	t, ok := model.ParseSearchType(*searchType)
	if !ok {
		return fmt.Errorf("unknown search type %q: %w", *searchType, errUsage)
	}
	list, err := a.client.Search(ctx, query, client.SearchOptions{Type: t, Page: *searchPage})
	if err != nil {
		return err
	}
	if best, ok := client.BestMatch(list.Items, query); ok {
		a.logger.Info("Best match", "type", best.Type, "name", best.Name, "url", best.URL)
	}
	return a.printJSON(list)
}

func (a *app) sections(ctx context.Context, fanURL string, kind client.SectionKind) error {
	entity, err := a.client.Resolve(ctx, fanURL, client.ResolveOptions{ForceType: model.TypeFan, FetchAdditionalData: *extra})
	if err != nil {
		return err
	}
	fan, ok := entity.(*model.Fan)
	if !ok {
		return fmt.Errorf("%s is not a fan page", fanURL)
	}
	for i := 0; i < *pages; i++ {
		if err := a.client.LoadMore(ctx, fan, kind); err != nil {
			return err
		}
		a.logger.Debug("Loaded page", "section", kind, "page", i+1)
	}
	return a.printJSON(fan)
}

func (a *app) whoami(ctx context.Context) error {
	fan, err := a.client.CurrentFan(ctx)
	if err != nil {
		return err
	}
	if fan == nil {
		fmt.Fprintln(a.out, "not logged in")
		return nil
	}
	return a.printJSON(fan)
}

func (a *app) download(ctx context.Context, urls string) error {
	manager := download.NewManager(a.settings, a.client, func(event download.ProgressEvent) {
		switch event.Level {
		case download.LevelError:
			a.logger.Error(event.Message)
		case download.LevelWarning:
			a.logger.Warn(event.Message)
		case download.LevelVerbose:
			if *verbose {
				a.logger.Info(event.Message)
			} else {
				a.logger.Debug(event.Message)
			}
		default:
			a.logger.Info(event.Message)
		}
	})

	if err := manager.Initialize(ctx, urls); err != nil {
		return err
	}
	if *dryRun {
		for _, name := range manager.GetAlbumNames() {
			fmt.Fprintln(a.out, name)
		}
		return nil
	}

	if err := manager.StartDownloads(ctx); err != nil {
		return err
	}

	received, total, files, totalFiles := manager.GetProgress()
	a.logger.Info("Complete",
		"files", fmt.Sprintf("%d/%d", files, totalFiles),
		"mb", fmt.Sprintf("%.2f", float64(received)/1024/1024),
		"expected_mb", fmt.Sprintf("%.2f", float64(total)/1024/1024),
	)
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
