package xlread

import (
	"encoding/base64"
	"errors"
	"strings"
)

var errEmptyPayload = errors.New("empty payload")

// Decode reverses the base64 transport encoding of a document payload.
//
// ASCII whitespace is ignored, a "data:<mime>;base64," prefix is stripped and
// trailing padding is optional.
func Decode(payload string) ([]byte, error) {
	s, err := stripDataURL(payload)
	if err != nil {
		return nil, newStageError(StageDecode, "", err)
	}
	s = stripSpace(s)
	if s == "" {
		return nil, newStageError(StageDecode, "", errEmptyPayload)
	}

	enc := base64.StdEncoding
	if !strings.HasSuffix(s, "=") && len(s)%4 != 0 {
		enc = base64.RawStdEncoding
	}
	b, err := enc.DecodeString(s)
	if err != nil {
		return nil, newStageError(StageDecode, "", err)
	}
	return b, nil
}

func stripDataURL(s string) (string, error) {
	trimmed := strings.TrimLeft(s, " \t\r\n\f")
	if !strings.HasPrefix(trimmed, "data:") {
		return s, nil
	}
	header, body, ok := strings.Cut(trimmed, ",")
	if !ok {
		return "", errors.New("data URL has no payload")
	}
	if !strings.HasSuffix(strings.ToLower(header), ";base64") {
		return "", errors.New("data URL is not base64 encoded")
	}
	return body, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			return -1
		}
		return r
	}, s)
}
