package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Number is an integer that may arrive as a JSON number or as a string
// of digits. Anything else decodes to zero.
type Number int64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if !IsDigits(s) {
			*n = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*n = Number(v)
		return nil
	}
	var f json.Number
	if err := json.Unmarshal(data, &f); err != nil {
		*n = 0
		return nil
	}
	if v, err := f.Int64(); err == nil {
		*n = Number(v)
		return nil
	}
	v, err := f.Float64()
	if err != nil {
		return err
	}
	*n = Number(int64(v))
	return nil
}

// Int64 returns n as an int64.
func (n Number) Int64() int64 { return int64(n) }

// Int returns n as an int.
func (n Number) Int() int { return int(n) }

// Float is a float that may arrive as a JSON number or a numeric string.
type Float float64

func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = Float(v)
	return nil
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Flag is an error or status marker that Bandcamp sends either as a
// boolean or as a string code such as "invalid_crumb".
type Flag struct {
	Set  bool
	Code string
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = Flag{}
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, string(data) == "null", string(data) == "false":
		return nil
	case string(data) == "true":
		f.Set = true
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.Code = s
		f.Set = s != ""
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.Set = n != 0
	}
	return nil
}

// StringList accepts either a single string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(StringList, 0, len(raw))
		for _, r := range raw {
			var s string
			if json.Unmarshal(r, &s) == nil && s != "" {
				out = append(out, s)
			}
		}
		*l = out
	default:
		*l = nil
	}
	return nil
}

// First returns the first element or "".
func (l StringList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// ISODate is the layout every parseable date is normalized to.
const ISODate = "2006-01-02T15:04:05.000Z"

var dateLayouts = []string{
	"02 Jan 2006 15:04:05 MST", // "01 Jan 2023 00:00:00 GMT"
	"2 Jan 2006 15:04:05 MST",  // "1 Jan 2023 00:00:00 GMT"
	time.RFC3339Nano,
	time.RFC3339,
	ISODate,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 January 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// NormalizeDate rewrites a parseable date to ISODate in UTC. Unparseable
// input is returned unchanged.
func NormalizeDate(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC().Format(ISODate)
		}
	}
	return s
}

// Date is a date string normalized with NormalizeDate while decoding.
// Numeric values are treated as unix seconds.
type Date string

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*d = ""
		return nil
	}
	if data[0] != '"' {
		var secs float64
		if err := json.Unmarshal(data, &secs); err != nil {
			*d = ""
			return nil
		}
		*d = Date(time.Unix(int64(secs), 0).UTC().Format(ISODate))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = Date(NormalizeDate(s))
	return nil
}

// String returns the normalized date.
func (d Date) String() string { return string(d) }
