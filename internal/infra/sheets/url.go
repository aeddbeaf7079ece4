package sheets

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidSheetURL = errors.New("invalid google sheet url")

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// ExtractSpreadsheetID pulls the document id out of a Google Sheets URL.
func ExtractSpreadsheetID(url string) (string, error) {
	m := spreadsheetIDPattern.FindStringSubmatch(strings.TrimSpace(url))
	if len(m) < 2 {
		return "", ErrInvalidSheetURL
	}
	return m[1], nil
}

// quoteSheet renders a sheet title for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
