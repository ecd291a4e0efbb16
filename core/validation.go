// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateReviewDocument validates a ReviewDocument according to domain rules.
//
// Validation rules:
//   - HotelName must not be empty
//   - ReviewText must not be empty
//   - Rating must be within [0, 5]
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding processor runs)
//   - ID (0 is valid before content hashing)
func ValidateReviewDocument(doc *ReviewDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.HotelName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyHotelName)
	}

	if doc.ReviewText == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyReviewText)
	}

	if doc.Rating < 0 || doc.Rating > 5 {
		return fmt.Errorf("%w: %w (got %.2f)", ErrInvalidDocument, ErrInvalidRating, doc.Rating)
	}

	return nil
}

// ValidateTravelQuery validates a parsed TravelQuery according to domain rules.
//
// Validation rules:
//   - if both dates are set, CheckOut must be after CheckIn
//   - PartySize, if set, must be positive
//
// NOT validated:
//   - Destination (an empty destination routes the turn to direct chat)
func ValidateTravelQuery(q *TravelQuery) error {
	if q == nil {
		return fmt.Errorf("%w: query is nil", ErrInvalidQuery)
	}

	if !q.CheckIn.IsZero() && !q.CheckOut.IsZero() && !q.CheckOut.After(q.CheckIn) {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrInvalidDateRange)
	}

	if q.PartySize < 0 {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidQuery, ErrInvalidPartySize, q.PartySize)
	}

	return nil
}
