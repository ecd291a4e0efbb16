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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a ReviewDocument failed validation.
	ErrInvalidDocument = errors.New("invalid review document")

	// ErrInvalidQuery indicates a TravelQuery failed validation.
	ErrInvalidQuery = errors.New("invalid travel query")

	// ErrEmptyHotelName indicates the HotelName field is empty.
	ErrEmptyHotelName = errors.New("hotel name cannot be empty")

	// ErrEmptyReviewText indicates the ReviewText field is empty.
	ErrEmptyReviewText = errors.New("review text cannot be empty")

	// ErrInvalidRating indicates a rating outside the 0-5 range.
	ErrInvalidRating = errors.New("rating must be between 0 and 5")

	// ErrInvalidDateRange indicates check-out is not after check-in.
	ErrInvalidDateRange = errors.New("check-out must be after check-in")

	// ErrInvalidPartySize indicates a non-positive traveler count.
	ErrInvalidPartySize = errors.New("party size must be positive")
)
