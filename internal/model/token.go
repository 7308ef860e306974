package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultOlderThanToken is the cursor used to request the first page of a
// fan list: an hour in the future so nothing is excluded.
func DefaultOlderThanToken(now time.Time) string {
	return fmt.Sprintf("%d::a::", now.Add(time.Hour).Unix())
}

// TokenTime extracts the unix timestamp at the front of a paging token.
func TokenTime(token string) (time.Time, bool) {
	head, _, _ := strings.Cut(token, ":")
	sec, err := strconv.ParseInt(head, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}
