package search

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayfinder/backend/internal/models"
)

// Pipeline loads the candidate inventory for a location and filters it down
// to hotels that can actually host the requested stay. It only reads; any
// storage failure aborts the whole run so a partial result is never cached.
type Pipeline struct {
	hotels models.HotelRepository
	rooms  models.RoomRepository
	offers models.OfferRepository
	logger *logrus.Logger
}

func NewPipeline(
	hotels models.HotelRepository,
	rooms models.RoomRepository,
	offers models.OfferRepository,
	logger *logrus.Logger,
) *Pipeline {
	return &Pipeline{
		hotels: hotels,
		rooms:  rooms,
		offers: offers,
		logger: logger,
	}
}

// Assemble returns the nested hotel/room/offer structures for a stay. Every
// hotel in the result has at least one room, and every room at least one
// offer that fully covers [startsOn, endsOn). The result is unranked.
func (p *Pipeline) Assemble(ctx context.Context, locationID string, startsOn, endsOn time.Time, capacity int) ([]models.HotelResult, error) {
	startsOn = NormalizeDate(startsOn)
	endsOn = NormalizeDate(endsOn)

	hotels, err := p.hotels.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels for location %s: %w", locationID, err)
	}

	results := make([]models.HotelResult, 0, len(hotels))
	for _, hotel := range hotels {
		rooms, err := p.rooms.ListByHotel(ctx, hotel.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list rooms for hotel %s: %w", hotel.ID, err)
		}

		roomResults := make([]models.RoomResult, 0, len(rooms))
		for _, room := range rooms {
			if room.Capacity < capacity {
				continue
			}

			// Storage prefilters on availability and the stay window, but the
			// matcher decides; re-validate every offer.
			offers, err := p.offers.ListByRoom(ctx, room.ID, startsOn, endsOn)
			if err != nil {
				return nil, fmt.Errorf("failed to list offers for room %s: %w", room.ID, err)
			}

			covering := make([]models.Offer, 0, len(offers))
			for _, offer := range offers {
				if !offer.Availability {
					continue
				}
				if !Covers(offer.StartsOn, offer.EndsOn, startsOn, endsOn) {
					continue
				}
				covering = append(covering, offer)
			}

			if len(covering) == 0 {
				continue
			}

			roomResults = append(roomResults, models.RoomResult{
				Room:   room,
				Offers: covering,
			})
		}

		if len(roomResults) == 0 {
			continue
		}

		results = append(results, models.HotelResult{
			Hotel: hotel,
			Rooms: roomResults,
		})
	}

	p.logger.WithFields(logrus.Fields{
		"location_id":      locationID,
		"candidate_hotels": len(hotels),
		"matched_hotels":   len(results),
	}).Debug("Assembled search results")

	return results, nil
}
