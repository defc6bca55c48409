package models

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateTokenRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateSearchRequest struct {
	LocationID string `json:"location_id" binding:"required"`
	StartsOn   string `json:"starts_on" binding:"required"`
	EndsOn     string `json:"ends_on" binding:"required"`
	Capacity   int    `json:"capacity" binding:"required,min=1"`
}

type CreateSearchResponse struct {
	SearchID string `json:"search_id"`
}

type SearchResultResponse struct {
	Search *Search       `json:"search"`
	Hotels []HotelResult `json:"hotels"`
}

type CreateBookingRequest struct {
	SearchID string `json:"search_id" binding:"required"`
	HotelID  string `json:"hotel_id" binding:"required"`
	RoomID   string `json:"room_id" binding:"required"`
	OfferID  string `json:"offer_id" binding:"required"`
}

type LocationSuggestion struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
	Label   string `json:"label"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
