// Package icon validates and hashes candidate server icon payloads before
// they reach the icon cache.
package icon

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Payload length bounds, in base64 characters after the data-URI prefix is
// stripped.
const (
	MinPayloadLen = 100
	MaxPayloadLen = 100000
)

var (
	ErrPayloadLength = errors.New("icon payload length out of bounds")
	ErrInvalidBase64 = errors.New("icon payload is not valid base64")
	ErrUnknownFormat = errors.New("icon payload is not a recognized image format")
)

// magicMarkers is the whitelist of accepted image signatures.
var magicMarkers = []struct {
	format string
	offset int
	bytes  []byte
}{
	{"jpeg", 0, []byte{0xFF, 0xD8, 0xFF}},
	{"png", 0, []byte{0x89, 0x50, 0x4E, 0x47}},
	{"gif", 0, []byte("GIF8")},
	{"webp", 8, []byte("WEBP")},
	{"bmp", 0, []byte("BM")},
}

// Validate normalizes and checks a candidate icon payload. The data-URI
// header, when present, is stripped. A payload passes when its length is
// within bounds, it survives a strict base64 round-trip, and its decoded
// bytes carry a whitelisted image signature. Returns the cleaned payload.
func Validate(payload string) (string, error) {
	payload = StripDataURI(payload)

	if len(payload) < MinPayloadLen || len(payload) > MaxPayloadLen {
		return "", fmt.Errorf("%w: %d characters", ErrPayloadLength, len(payload))
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidBase64, err)
	}

	// Round-trip re-encoding must reproduce the input exactly; anything
	// else indicates sloppy padding or embedded garbage.
	if base64.StdEncoding.EncodeToString(decoded) != payload {
		return "", ErrInvalidBase64
	}

	if !hasImageSignature(decoded) {
		return "", ErrUnknownFormat
	}

	return payload, nil
}

// StripDataURI removes a leading data-URI header ("data:image/png;base64,")
// from a payload, if present.
func StripDataURI(payload string) string {
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.IndexByte(payload, ','); idx >= 0 {
			return payload[idx+1:]
		}
	}

	return payload
}

// Hash computes the content hash stored alongside the payload; unchanged
// hashes skip the database write entirely.
func Hash(payload string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(payload))
}

func hasImageSignature(decoded []byte) bool {
	for _, marker := range magicMarkers {
		end := marker.offset + len(marker.bytes)
		if len(decoded) >= end && bytes.Equal(decoded[marker.offset:end], marker.bytes) {
			return true
		}
	}

	return false
}
