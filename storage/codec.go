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


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/itinera/core"
)

// Hand-written MUS serializers for the storage layer. Field order is part
// of the on-disk format; append new fields at the end only.

// IDMUS serializes core.ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v core.ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (core.ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return core.ID(v), n, err
}

func (s idMUS) Size(v core.ID) int {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

var (
	stringSliceMUS  = ord.NewSliceSer[string](ord.String)
	float32SliceMUS = ord.NewSliceSer[float32](varint.Float32)
	prefMapMUS      = ord.NewMapSer[string, float64](ord.String, varint.Float64)
	rejectedMapMUS  = ord.NewMapSer[core.ID, bool](IDMUS, ord.Bool)
	timeMUS         = raw.TimeUnixMicro
)

// ReviewDocumentMUS serializes core.ReviewDocument values.
var ReviewDocumentMUS = reviewDocumentMUS{}

type reviewDocumentMUS struct{}

func (s reviewDocumentMUS) Marshal(v core.ReviewDocument, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.HotelName, bs[n:])
	n += ord.String.Marshal(v.Location, bs[n:])
	n += varint.Float64.Marshal(v.Rating, bs[n:])
	n += varint.Int.Marshal(v.ReviewCount, bs[n:])
	n += ord.String.Marshal(v.ReviewTitle, bs[n:])
	n += ord.String.Marshal(v.ReviewText, bs[n:])
	n += stringSliceMUS.Marshal(v.Tags, bs[n:])
	n += varint.Float64.Marshal(v.PriceNight, bs[n:])
	n += float32SliceMUS.Marshal(v.Vector, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (s reviewDocumentMUS) Unmarshal(bs []byte) (v core.ReviewDocument, n int, err error) {
	var m int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.HotelName, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Location, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Rating, m, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.ReviewCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.ReviewTitle, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.ReviewText, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Tags, m, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.PriceNight, m, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Vector, m, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.InsertedAt, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.UpdatedAt, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (s reviewDocumentMUS) Size(v core.ReviewDocument) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.HotelName)
	size += ord.String.Size(v.Location)
	size += varint.Float64.Size(v.Rating)
	size += varint.Int.Size(v.ReviewCount)
	size += ord.String.Size(v.ReviewTitle)
	size += ord.String.Size(v.ReviewText)
	size += stringSliceMUS.Size(v.Tags)
	size += varint.Float64.Size(v.PriceNight)
	size += float32SliceMUS.Size(v.Vector)
	size += timeMUS.Size(v.InsertedAt)
	size += timeMUS.Size(v.UpdatedAt)
	return size
}

func (s reviewDocumentMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

// TravelQueryMUS serializes core.TravelQuery values.
var TravelQueryMUS = travelQueryMUS{}

type travelQueryMUS struct{}

func (s travelQueryMUS) Marshal(v core.TravelQuery, bs []byte) (n int) {
	n = ord.String.Marshal(v.Destination, bs)
	n += timeMUS.Marshal(v.CheckIn, bs[n:])
	n += timeMUS.Marshal(v.CheckOut, bs[n:])
	n += varint.Int.Marshal(v.PartySize, bs[n:])
	n += varint.Float64.Marshal(v.BudgetMax, bs[n:])
	n += stringSliceMUS.Marshal(v.Atmosphere, bs[n:])
	n += stringSliceMUS.Marshal(v.Amenities, bs[n:])
	return n
}

func (s travelQueryMUS) Unmarshal(bs []byte) (v core.TravelQuery, n int, err error) {
	var m int
	if v.Destination, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.CheckIn, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.CheckOut, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.PartySize, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.BudgetMax, m, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Atmosphere, m, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Amenities, m, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (s travelQueryMUS) Size(v core.TravelQuery) (size int) {
	size = ord.String.Size(v.Destination)
	size += timeMUS.Size(v.CheckIn)
	size += timeMUS.Size(v.CheckOut)
	size += varint.Int.Size(v.PartySize)
	size += varint.Float64.Size(v.BudgetMax)
	size += stringSliceMUS.Size(v.Atmosphere)
	size += stringSliceMUS.Size(v.Amenities)
	return size
}

func (s travelQueryMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

// ChatMessageMUS serializes core.ChatMessage values.
var ChatMessageMUS = chatMessageMUS{}

type chatMessageMUS struct{}

func (s chatMessageMUS) Marshal(v core.ChatMessage, bs []byte) (n int) {
	n = ord.String.Marshal(v.Role, bs)
	n += ord.String.Marshal(v.Content, bs[n:])
	n += timeMUS.Marshal(v.Timestamp, bs[n:])
	return n
}

func (s chatMessageMUS) Unmarshal(bs []byte) (v core.ChatMessage, n int, err error) {
	var m int
	if v.Role, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Content, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Timestamp, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (s chatMessageMUS) Size(v core.ChatMessage) (size int) {
	size = ord.String.Size(v.Role)
	size += ord.String.Size(v.Content)
	size += timeMUS.Size(v.Timestamp)
	return size
}

func (s chatMessageMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

var (
	querySliceMUS = ord.NewSliceSer[core.TravelQuery](TravelQueryMUS)
	chatSliceMUS  = ord.NewSliceSer[core.ChatMessage](ChatMessageMUS)
)

// SessionMemoryMUS serializes core.SessionMemory values.
var SessionMemoryMUS = sessionMemoryMUS{}

type sessionMemoryMUS struct{}

func (s sessionMemoryMUS) Marshal(v core.SessionMemory, bs []byte) (n int) {
	n = querySliceMUS.Marshal(v.SearchHistory, bs)
	n += rejectedMapMUS.Marshal(v.RejectedIds, bs[n:])
	n += prefMapMUS.Marshal(v.LearnedPreferences, bs[n:])
	n += chatSliceMUS.Marshal(v.ChatHistory, bs[n:])
	return n
}

func (s sessionMemoryMUS) Unmarshal(bs []byte) (v core.SessionMemory, n int, err error) {
	var m int
	if v.SearchHistory, n, err = querySliceMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.RejectedIds, m, err = rejectedMapMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.LearnedPreferences, m, err = prefMapMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.ChatHistory, m, err = chatSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (s sessionMemoryMUS) Size(v core.SessionMemory) (size int) {
	size = querySliceMUS.Size(v.SearchHistory)
	size += rejectedMapMUS.Size(v.RejectedIds)
	size += prefMapMUS.Size(v.LearnedPreferences)
	size += chatSliceMUS.Size(v.ChatHistory)
	return size
}

func (s sessionMemoryMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, IDMUS.Size(id))
	IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalReviewDocument serializes a ReviewDocument to bytes.
func MarshalReviewDocument(doc *core.ReviewDocument) []byte {
	buf := make([]byte, ReviewDocumentMUS.Size(*doc))
	ReviewDocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalReviewDocument deserializes a ReviewDocument from bytes.
func UnmarshalReviewDocument(data []byte) (*core.ReviewDocument, error) {
	doc, _, err := ReviewDocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &doc, nil
}

// MarshalSessionMemory serializes a SessionMemory to bytes.
func MarshalSessionMemory(memory *core.SessionMemory) []byte {
	buf := make([]byte, SessionMemoryMUS.Size(*memory))
	SessionMemoryMUS.Marshal(*memory, buf)
	return buf
}

// UnmarshalSessionMemory deserializes a SessionMemory from bytes.
func UnmarshalSessionMemory(data []byte) (*core.SessionMemory, error) {
	memory, _, err := SessionMemoryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &memory, nil
}
