// Package audio writes metadata into downloaded files and renders
// playlists.
//
// # Tagging
//
// Tagger writes a format-neutral TrackTags value. MP3 files get ID3v2
// frames and embedded cover art; other containers are tagged through
// TagLib:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, audio.TrackTags{Title: "Intro", TrackNumber: 1}, artwork)
//
// Each field can be modified, cleared or left alone through TagConfig.
//
// # Playlists
//
//	creator := audio.NewPlaylistCreator(audio.ParsePlaylistFormat("pls"), false)
//	content := creator.CreatePlaylist(&audio.Playlist{Title: "Album", Entries: entries})
//
// Supported formats are M3U (optionally extended), PLS, WPL and ZPL.
package audio
