// Package dto holds the raw payload shapes Bandcamp embeds in its pages
// and returns from its JSON endpoints. Unknown fields are ignored; the
// field types normalize digit strings to numbers and dates to ISO-8601.
package dto
