package dto

import (
	"encoding/json"
	"strconv"
	"strings"
)

// LDEntity is the subset of schema.org vocabulary found in Bandcamp's
// JSON-LD blocks (MusicAlbum, MusicRecording, MusicGroup).
type LDEntity struct {
	Type               StringList   `json:"@type"`
	ID                 string       `json:"@id"`
	Name               string       `json:"name"`
	URL                string       `json:"url"`
	Description        string       `json:"description"`
	CreditText         string       `json:"creditText"`
	DatePublished      Date         `json:"datePublished"`
	Duration           string       `json:"duration"`
	Image              StringList   `json:"image"`
	Keywords           StringList   `json:"keywords"`
	NumTracks          Number       `json:"numTracks"`
	ByArtist           *LDRef       `json:"byArtist"`
	Publisher          *LDRef       `json:"publisher"`
	InAlbum            *LDRef       `json:"inAlbum"`
	Track              *LDItemList  `json:"track"`
	RecordingOf        *LDWork      `json:"recordingOf"`
	AdditionalProperty []LDProperty `json:"additionalProperty"`
	FoundingLocation   *LDRef       `json:"foundingLocation"`
}

// Is reports whether the entity carries the given @type.
func (e *LDEntity) Is(t string) bool {
	for _, v := range e.Type {
		if v == t {
			return true
		}
	}
	return false
}

// Link returns @id, falling back to url.
func (e *LDEntity) Link() string {
	if e.ID != "" {
		return e.ID
	}
	return e.URL
}

// Lyrics returns the lyrics text of a recording.
func (e *LDEntity) Lyrics() string {
	if e.RecordingOf == nil || e.RecordingOf.Lyrics == nil {
		return ""
	}
	return e.RecordingOf.Lyrics.Text
}

// Property returns the string value of the named additionalProperty.
func (e *LDEntity) Property(name string) (string, bool) {
	for _, p := range e.AdditionalProperty {
		if p.Name == name {
			return p.String(), true
		}
	}
	return "", false
}

// LDRef is a nested reference such as byArtist or inAlbum.
type LDRef struct {
	Type StringList `json:"@type"`
	ID   string     `json:"@id"`
	Name string     `json:"name"`
	URL  string     `json:"url"`
}

// Link returns @id, falling back to url.
func (r *LDRef) Link() string {
	if r.ID != "" {
		return r.ID
	}
	return r.URL
}

// LDItemList is the track listing of a MusicAlbum.
type LDItemList struct {
	NumberOfItems   Number       `json:"numberOfItems"`
	ItemListElement []LDListItem `json:"itemListElement"`
}

// LDListItem is one positioned track of an album.
type LDListItem struct {
	Position Number   `json:"position"`
	Item     LDEntity `json:"item"`
}

// LDWork carries the lyrics of a recording.
type LDWork struct {
	Lyrics *struct {
		Text string `json:"text"`
	} `json:"lyrics"`
}

// LDProperty is a name/value pair from additionalProperty.
type LDProperty struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// String returns the value as text whether it was encoded as a string,
// a number or a boolean.
func (p LDProperty) String() string {
	var s string
	if err := json.Unmarshal(p.Value, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(p.Value, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.TrimSpace(string(p.Value))
}
