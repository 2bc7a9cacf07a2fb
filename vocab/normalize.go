package vocab

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize maps a token to its lookup key: Unicode NFC composition followed
// by lowercasing. A cases.Caser is not safe for concurrent use, so one is
// created per call.
func Normalize(token string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(token))
}
