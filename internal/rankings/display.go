package rankings

import (
	"strings"
	"time"
)

const dateSuffixLayout = "2006-01-02"

// DisplayDate returns the date a snapshot should be labelled with. A name
// ending in YYYY-MM-DD yields midnight UTC of that day; any other name falls
// back to createdAt.
func DisplayDate(name string, createdAt time.Time) time.Time {
	name = strings.TrimSpace(name)
	if len(name) < len(dateSuffixLayout) {
		return createdAt
	}

	suffix := name[len(name)-len(dateSuffixLayout):]
	date, err := time.Parse(dateSuffixLayout, suffix)
	if err != nil {
		return createdAt
	}
	return date
}
