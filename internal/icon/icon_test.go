package icon_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/craftlist/craftlist/internal/icon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePNG builds a base64 payload with a PNG signature padded out to the
// requested decoded size.
func fakePNG(size int) string {
	data := make([]byte, size)
	copy(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})

	return base64.StdEncoding.EncodeToString(data)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts png payload", func(t *testing.T) {
		t.Parallel()

		payload := fakePNG(512)
		cleaned, err := icon.Validate(payload)
		require.NoError(t, err)
		assert.Equal(t, payload, cleaned)
	})

	t.Run("strips data uri prefix", func(t *testing.T) {
		t.Parallel()

		payload := fakePNG(512)
		cleaned, err := icon.Validate("data:image/png;base64," + payload)
		require.NoError(t, err)
		assert.Equal(t, payload, cleaned)
	})

	t.Run("rejects short payload", func(t *testing.T) {
		t.Parallel()

		_, err := icon.Validate(fakePNG(16))
		require.ErrorIs(t, err, icon.ErrPayloadLength)
	})

	t.Run("accepts payload at minimum length", func(t *testing.T) {
		t.Parallel()

		// 75 decoded bytes encode to exactly 100 base64 characters.
		payload := fakePNG(75)
		require.Len(t, payload, icon.MinPayloadLen)

		_, err := icon.Validate(payload)
		assert.NoError(t, err)
	})

	t.Run("rejects payload one under minimum length", func(t *testing.T) {
		t.Parallel()

		payload := fakePNG(75)[:icon.MinPayloadLen-1]

		_, err := icon.Validate(payload)
		require.ErrorIs(t, err, icon.ErrPayloadLength)
	})

	t.Run("rejects oversized payload", func(t *testing.T) {
		t.Parallel()

		_, err := icon.Validate(fakePNG(90000))
		require.ErrorIs(t, err, icon.ErrPayloadLength)
	})

	t.Run("rejects malformed base64", func(t *testing.T) {
		t.Parallel()

		_, err := icon.Validate(strings.Repeat("!", 200))
		require.ErrorIs(t, err, icon.ErrInvalidBase64)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		data := make([]byte, 256)
		for i := range data {
			data[i] = 0x42
		}

		_, err := icon.Validate(base64.StdEncoding.EncodeToString(data))
		require.ErrorIs(t, err, icon.ErrUnknownFormat)
	})
}

func TestHash(t *testing.T) {
	t.Parallel()

	a := icon.Hash("payload-one")
	b := icon.Hash("payload-two")

	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, icon.Hash("payload-one"))
}
