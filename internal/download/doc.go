// Package download turns Bandcamp URLs into files on disk.
//
// The Manager resolves every input through the client package, plans a
// Job per release and downloads the jobs:
//
//  1. Resolve input URLs (albums, tracks, and with
//     DownloadArtistDiscography set, artist or label pages)
//  2. Pick one audio stream per track following settings.AudioFormats
//  3. Download cover art
//  4. Download tracks concurrently, retrying with exponential backoff
//  5. Tag the files
//  6. Write a playlist (optional)
//
// # Basic Usage
//
//	c, err := client.New(client.WithCookie(settings.Cookie))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	manager := download.NewManager(settings, c, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx, "https://artist.bandcamp.com/album/name"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := manager.StartDownloads(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Paths come from settings.DownloadsPath and the file name formats. The
// placeholders {artist}, {album}, {year}, {label}, {title}, {tracknum}
// and {ext} are sanitized before substitution.
//
// Only streams the session can see are downloaded: anonymous sessions
// get the mp3-128 preview streams, a logged-in session owning the
// release may see more.
package download
