package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateReviewDocument(t *testing.T) {
	valid := func() *ReviewDocument {
		return &ReviewDocument{
			HotelName:  "Hotel Le Marais",
			Location:   "Paris",
			Rating:     4.5,
			ReviewText: "Quiet and charming, steps from the metro.",
		}
	}

	t.Run("valid document", func(t *testing.T) {
		assert.NoError(t, ValidateReviewDocument(valid()))
	})

	t.Run("nil document", func(t *testing.T) {
		err := ValidateReviewDocument(nil)
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("empty hotel name", func(t *testing.T) {
		doc := valid()
		doc.HotelName = ""
		err := ValidateReviewDocument(doc)
		assert.ErrorIs(t, err, ErrEmptyHotelName)
	})

	t.Run("empty review text", func(t *testing.T) {
		doc := valid()
		doc.ReviewText = ""
		err := ValidateReviewDocument(doc)
		assert.ErrorIs(t, err, ErrEmptyReviewText)
	})

	t.Run("rating out of range", func(t *testing.T) {
		doc := valid()
		doc.Rating = 5.5
		assert.ErrorIs(t, ValidateReviewDocument(doc), ErrInvalidRating)

		doc.Rating = -0.1
		assert.ErrorIs(t, ValidateReviewDocument(doc), ErrInvalidRating)
	})
}

func TestValidateTravelQuery(t *testing.T) {
	t.Run("valid query", func(t *testing.T) {
		q := &TravelQuery{
			Destination: "Paris",
			CheckIn:     time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
			CheckOut:    time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
			PartySize:   2,
		}
		assert.NoError(t, ValidateTravelQuery(q))
	})

	t.Run("empty destination is allowed", func(t *testing.T) {
		assert.NoError(t, ValidateTravelQuery(&TravelQuery{}))
	})

	t.Run("nil query", func(t *testing.T) {
		assert.ErrorIs(t, ValidateTravelQuery(nil), ErrInvalidQuery)
	})

	t.Run("inverted date range", func(t *testing.T) {
		q := &TravelQuery{
			CheckIn:  time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
		}
		assert.ErrorIs(t, ValidateTravelQuery(q), ErrInvalidDateRange)
	})

	t.Run("negative party size", func(t *testing.T) {
		q := &TravelQuery{PartySize: -1}
		assert.ErrorIs(t, ValidateTravelQuery(q), ErrInvalidPartySize)
	})
}
