// Package ioutils holds the file system and image helpers used when
// writing downloads to disk.
//
//	dir := ioutils.ExpandHome("~/Music")
//	err := ioutils.EnsureDir(dir)
//	name := ioutils.SanitizeFileName("Song: Part 1/2") // "Song_ Part 1_2"
//	err = ioutils.WriteFile(ctx, filepath.Join(dir, name+".m3u"), data)
//
// ImageService resizes cover art and converts it to JPEG:
//
//	svc := ioutils.NewImageService()
//	resized, err := svc.ResizeImage(ctx, imageData, 500, 500)
package ioutils
