package decode

import (
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Decode converts raw file bytes to UTF-8 text. Invalid UTF-8 yields an
// empty string so downstream stages always receive a usable string.
func Decode(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if !utf8.Valid(data) {
		logrus.Debugf("Decode error: content is not valid UTF-8 (%d bytes)", len(data))
		return ""
	}
	return string(data)
}
