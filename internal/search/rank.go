package search

import (
	"sort"

	"github.com/stayfinder/backend/internal/models"
)

// Deterministic ranking: every level (offers in a room, rooms in a hotel,
// hotels in the result) is sorted ascending by cheapest reachable effective
// price, with the entity id as tie-break so identical data always produces
// identical order.

// minOfferPrice returns the cheapest effective price among the offers.
// Entities without offers are filtered out before ranking; 0 keeps the sort
// total if one slips through.
func minOfferPrice(offers []models.Offer) float64 {
	if len(offers) == 0 {
		return 0
	}
	min := offers[0].EffectivePrice
	for _, offer := range offers[1:] {
		if offer.EffectivePrice < min {
			min = offer.EffectivePrice
		}
	}
	return min
}

func roomMinPrice(room models.RoomResult) float64 {
	return minOfferPrice(room.Offers)
}

func hotelMinPrice(hotel models.HotelResult) float64 {
	if len(hotel.Rooms) == 0 {
		return 0
	}
	min := roomMinPrice(hotel.Rooms[0])
	for _, room := range hotel.Rooms[1:] {
		if price := roomMinPrice(room); price < min {
			min = price
		}
	}
	return min
}

// Rank orders hotels, their rooms, and their offers in place and returns the
// same slice for convenience.
func Rank(hotels []models.HotelResult) []models.HotelResult {
	for i := range hotels {
		for j := range hotels[i].Rooms {
			offers := hotels[i].Rooms[j].Offers
			sort.SliceStable(offers, func(a, b int) bool {
				if offers[a].EffectivePrice != offers[b].EffectivePrice {
					return offers[a].EffectivePrice < offers[b].EffectivePrice
				}
				return offers[a].ID < offers[b].ID
			})
		}

		rooms := hotels[i].Rooms
		sort.SliceStable(rooms, func(a, b int) bool {
			pa, pb := roomMinPrice(rooms[a]), roomMinPrice(rooms[b])
			if pa != pb {
				return pa < pb
			}
			return rooms[a].ID < rooms[b].ID
		})
	}

	sort.SliceStable(hotels, func(a, b int) bool {
		pa, pb := hotelMinPrice(hotels[a]), hotelMinPrice(hotels[b])
		if pa != pb {
			return pa < pb
		}
		return hotels[a].ID < hotels[b].ID
	})

	return hotels
}
