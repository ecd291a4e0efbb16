package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/poiesic/itinera"
	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/ingestion"
)

// Built-in sample corpus used when no source file is given. One review per
// entry; tags mirror what the ingestion pipeline would index from the text.
var sampleReviews = []*core.ReviewDocument{
	{HotelName: "Hush Harbor", Location: "Paris, France", Rating: 4.7, ReviewCount: 182, ReviewTitle: "Wonderfully quiet", ReviewText: "A quiet hotel tucked behind the quay. We read on the balcony every evening and never heard the traffic.", Tags: []string{"quiet", "romantic"}, PriceNight: 178},
	{HotelName: "Still Waters Inn", Location: "Paris, France", Rating: 4.5, ReviewCount: 140, ReviewTitle: "Calm and cozy", ReviewText: "Such a quiet hotel. Thick walls, soft beds, and breakfast croissants worth the trip on their own.", Tags: []string{"quiet", "cozy", "breakfast"}, PriceNight: 152},
	{HotelName: "Le Petit Reve", Location: "Paris, France", Rating: 4.8, ReviewCount: 96, ReviewTitle: "Romantic hideaway", ReviewText: "Candlelit courtyard, rooftop views of the Eiffel Tower, and staff who remembered our anniversary.", Tags: []string{"romantic", "luxury"}, PriceNight: 240},
	{HotelName: "Gare du Nord Express", Location: "Paris, France", Rating: 3.6, ReviewCount: 412, ReviewTitle: "Convenient but loud", ReviewText: "Right by the station, which is the point and the problem. Light sleepers should look elsewhere.", Tags: []string{"budget"}, PriceNight: 89},
	{HotelName: "Roma Quiet Garden", Location: "Rome, Italy", Rating: 4.8, ReviewCount: 167, ReviewTitle: "An oasis near the forum", ReviewText: "A quiet hotel with a lemon garden. Ten minutes on foot to the Colosseum yet completely peaceful at night.", Tags: []string{"quiet", "romantic"}, PriceNight: 195},
	{HotelName: "Trastevere Nights", Location: "Rome, Italy", Rating: 4.2, ReviewCount: 230, ReviewTitle: "Lively neighborhood gem", ReviewText: "Great bars downstairs, which cuts both ways. Ask for a room on the courtyard side.", Tags: []string{"nightlife"}, PriceNight: 120},
	{HotelName: "Aventine Terrace", Location: "Rome, Italy", Rating: 4.6, ReviewCount: 88, ReviewTitle: "Breakfast with a view", ReviewText: "The breakfast terrace overlooks the orange grove. Free parking in the courtyard, rare for Rome.", Tags: []string{"breakfast", "parking"}, PriceNight: 165},
	{HotelName: "Shibuya Sky Pod", Location: "Tokyo, Japan", Rating: 4.1, ReviewCount: 540, ReviewTitle: "Tiny but brilliant", ReviewText: "Compact rooms, immaculate, with fast wifi and a laundry floor. Steps from the scramble crossing.", Tags: []string{"wifi", "budget"}, PriceNight: 95},
	{HotelName: "Yanaka Ryokan", Location: "Tokyo, Japan", Rating: 4.9, ReviewCount: 74, ReviewTitle: "Traditional and serene", ReviewText: "A quiet wooden ryokan in the old town. Tatami rooms, an onsen bath, and tea served at dusk.", Tags: []string{"quiet", "traditional"}, PriceNight: 210},
	{HotelName: "Gangnam Grand", Location: "Seoul, South Korea", Rating: 4.4, ReviewCount: 389, ReviewTitle: "Polished business hotel", ReviewText: "Spotless rooms, a pool on the 20th floor, and a subway entrance in the basement.", Tags: []string{"pool", "business"}, PriceNight: 140},
	{HotelName: "Bukchon Hanok Stay", Location: "Seoul, South Korea", Rating: 4.7, ReviewCount: 112, ReviewTitle: "Sleeping in history", ReviewText: "A restored hanok with heated floors and a quiet inner courtyard. Breakfast is a small feast.", Tags: []string{"quiet", "traditional", "breakfast"}, PriceNight: 130},
	{HotelName: "Brooklyn Foundry Hotel", Location: "New York, USA", Rating: 4.3, ReviewCount: 501, ReviewTitle: "Industrial chic done right", ReviewText: "Exposed brick, a rooftop bar, and skyline views. Parking garage next door charges extra.", Tags: []string{"rooftop", "parking"}, PriceNight: 260},
	{HotelName: "Midtown Value Inn", Location: "New York, USA", Rating: 3.4, ReviewCount: 820, ReviewTitle: "You get what you pay for", ReviewText: "Cheap for Manhattan and clean enough. The elevator queue at 9am is its own attraction.", Tags: []string{"budget"}, PriceNight: 119},
	{HotelName: "Marina Bay Vista", Location: "Singapore", Rating: 4.6, ReviewCount: 277, ReviewTitle: "Infinity pool dreams", ReviewText: "The pool deck alone justifies the rate. Rooms are quiet despite the location, breakfast spread is enormous.", Tags: []string{"pool", "luxury", "breakfast"}, PriceNight: 310},
	{HotelName: "Kampong Glam Lodge", Location: "Singapore", Rating: 4.0, ReviewCount: 198, ReviewTitle: "Colorful and friendly", ReviewText: "Budget rooms above the best murals in town. Hawker food around every corner.", Tags: []string{"budget"}, PriceNight: 85},
	{HotelName: "Alfama Miradouro", Location: "Lisbon, Portugal", Rating: 4.5, ReviewCount: 156, ReviewTitle: "Views over the rooftops", ReviewText: "A quiet guesthouse up the hill. Fado drifts up from the alleys at night, never loud enough to bother.", Tags: []string{"quiet", "romantic"}, PriceNight: 110},
	{HotelName: "Belem Riverside", Location: "Lisbon, Portugal", Rating: 4.2, ReviewCount: 203, ReviewTitle: "Great for families", ReviewText: "Big rooms, a small pool, and pastel de nata across the street. Tram stop at the door.", Tags: []string{"pool", "family"}, PriceNight: 125},
	{HotelName: "Table Mountain View", Location: "Cape Town, South Africa", Rating: 4.7, ReviewCount: 134, ReviewTitle: "Sunrise over the mountain", ReviewText: "Quiet suburb, secure parking, and the mountain fills the window. Wine tastings arranged at the desk.", Tags: []string{"quiet", "parking"}, PriceNight: 98},
	{HotelName: "Bosphorus Pearl", Location: "Istanbul, Turkey", Rating: 4.4, ReviewCount: 245, ReviewTitle: "Ferries and minarets", ReviewText: "Breakfast on the water, calls to prayer as your alarm. Rooms at the back are the quiet ones.", Tags: []string{"breakfast", "romantic"}, PriceNight: 105},
	{HotelName: "Reykjavik Harbor House", Location: "Reykjavik, Iceland", Rating: 4.6, ReviewCount: 89, ReviewTitle: "Cozy in the cold", ReviewText: "Woolen blankets, a geothermal hot tub, and northern lights from the deck in winter. Very quiet.", Tags: []string{"quiet", "cozy"}, PriceNight: 185},
}

var (
	seedFileName = flag.String("src", "", "file of seed data, one review document as JSON per line")
	dbPath       = flag.String("db", "./itinera_db", "path to BadgerDB database directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// documentsFromFile returns an iterator over JSON-encoded review documents,
// one per line. Malformed lines are logged and skipped.
func documentsFromFile(filename string) (iter.Seq[*core.ReviewDocument], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(*core.ReviewDocument) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			doc := &core.ReviewDocument{}
			if err := json.Unmarshal(line, doc); err != nil {
				slog.Warn("skipping malformed seed line", "line", lineNo, "err", err)
				continue
			}
			if !yield(doc) {
				return
			}
		}
	}, nil
}

// documentsFromSlice returns an iterator over a slice of review documents.
func documentsFromSlice(docs []*core.ReviewDocument) iter.Seq[*core.ReviewDocument] {
	return func(yield func(*core.ReviewDocument) bool) {
		for _, doc := range docs {
			if !yield(doc) {
				return
			}
		}
	}
}

// ingestBatched reads from a source iterator and ingests documents in batches.
func ingestBatched(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[*core.ReviewDocument], batchSize int) (int, error) {
	total := 0
	batch := make([]*core.ReviewDocument, 0, batchSize)

	for doc := range source {
		batch = append(batch, doc)
		if len(batch) == batchSize {
			if err := pipeline.Ingest(ctx, batch...); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}

	// Process any remaining documents
	if len(batch) > 0 {
		if err := pipeline.Ingest(ctx, batch...); err != nil {
			return total, err
		}
		total += len(batch)
	}

	return total, nil
}

func main() {
	assistant, err := itinera.NewAssistant(*dbPath, itinera.WithoutEnrichment())
	if err != nil {
		panic(err)
	}
	defer assistant.Close()

	ingester, err := assistant.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer ingester.Release()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[*core.ReviewDocument]
	if seedFileName != nil && *seedFileName != "" {
		source, err = documentsFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = documentsFromSlice(sampleReviews)
	}

	// Ingest in small batches so embedding starts while reading continues
	total, err := ingestBatched(ctx, ingester, source, 5)
	if err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "seeded %d review documents into %s\n", total, *dbPath)
}
