package types_test

import (
	"strings"
	"testing"

	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewValidate(t *testing.T) {
	t.Parallel()

	validBody := strings.Repeat("a", 200)

	tests := []struct {
		name    string
		body    string
		rating  int
		wantErr error
	}{
		{name: "valid review", body: validBody, rating: 4},
		{name: "body at minimum", body: strings.Repeat("a", 100), rating: 1},
		{name: "body at maximum", body: strings.Repeat("a", 500), rating: 5},
		{name: "body one under minimum", body: strings.Repeat("a", 99), rating: 3, wantErr: types.ErrReviewBodyLength},
		{name: "body one over maximum", body: strings.Repeat("a", 501), rating: 3, wantErr: types.ErrReviewBodyLength},
		{name: "multibyte runes count as one", body: strings.Repeat("ä", 100), rating: 3},
		{name: "rating below minimum", body: validBody, rating: 0, wantErr: types.ErrReviewRating},
		{name: "rating above maximum", body: validBody, rating: 6, wantErr: types.ErrReviewRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			review := &types.Review{Body: tt.body, Rating: tt.rating}
			err := review.Validate()

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}
