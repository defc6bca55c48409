package models

// Assembled search result structures. These are what the matching job caches
// and what GET /search returns; once written to the cache they are never
// mutated.

// RoomResult is a room plus the offers that cover the requested stay.
type RoomResult struct {
	Room
	Offers []Offer `json:"offers"`
}

// HotelResult is a hotel plus its qualifying rooms. Hotels with no
// qualifying rooms never appear in results.
type HotelResult struct {
	Hotel
	Rooms []RoomResult `json:"rooms"`
}

// CachedResult is the immutable payload stored under a search fingerprint.
type CachedResult struct {
	Search Search        `json:"search"`
	Hotels []HotelResult `json:"hotels"`
}
