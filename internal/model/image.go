package model

import "fmt"

// ImageSize classifies an image variant.
type ImageSize string

const (
	ImageSmall  ImageSize = "small"
	ImageMedium ImageSize = "medium"
	ImageLarge  ImageSize = "large"
)

// ImageKind selects the URL namespace of an image id. Release artwork
// lives under an "a" prefix, bio and fan photos do not.
type ImageKind int

const (
	ImageKindArt ImageKind = iota
	ImageKindPhoto
)

const imageBaseURL = "https://f4.bcbits.com/img/"

// Image is one rendition of a piece of artwork or a photo.
type Image struct {
	URL    string    `json:"url"`
	Size   ImageSize `json:"size"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
}

type imageVariant struct {
	suffix string
	size   ImageSize
	dim    int
}

var imageVariants = []imageVariant{
	{"_3", ImageSmall, 100},
	{"_9", ImageMedium, 210},
	{"_10", ImageLarge, 1200},
	{"_0", ImageLarge, 0},
}

// ImagesFromID expands a numeric image id into its four standard
// renditions. A zero id yields no images.
//
//	ImagesFromID(1234567890, ImageKindArt)[0].URL
//	// "https://f4.bcbits.com/img/a1234567890_3.jpg"
func ImagesFromID(id int64, kind ImageKind) []Image {
	if id <= 0 {
		return nil
	}
	prefix := ""
	if kind == ImageKindArt {
		prefix = "a"
	}
	images := make([]Image, 0, len(imageVariants))
	for _, v := range imageVariants {
		images = append(images, Image{
			URL:    fmt.Sprintf("%s%s%010d%s.jpg", imageBaseURL, prefix, id, v.suffix),
			Size:   v.size,
			Width:  v.dim,
			Height: v.dim,
		})
	}
	return images
}

// LargestImage returns the last large image, which is the original
// rendition when the set came from ImagesFromID.
func LargestImage(images []Image) (Image, bool) {
	var best Image
	found := false
	for _, img := range images {
		if img.Size == ImageLarge || !found {
			best = img
			found = true
		}
	}
	return best, found
}
