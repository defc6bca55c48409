package models

// GORM models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stayfinder/backend/pkg/utils"
	"gorm.io/gorm"
)

// Search status values. A search is mutated only by its own job once dispatched.
const (
	SearchStatusPending   = "pending"
	SearchStatusStarted   = "started"
	SearchStatusCompleted = "completed"
	SearchStatusNoResults = "no_results"
	SearchStatusFailed    = "failed"
)

// Booking status values.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// DateFormat is the wire and fingerprint format for stay dates.
const DateFormat = "2006-01-02"

// Base model with common fields
type BaseModel struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) ensureID() {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
}

// Location represents a searchable destination
type Location struct {
	BaseModel
	Name    string `json:"name" gorm:"not null"`
	City    string `json:"city" gorm:"not null;index"`
	Country string `json:"country" gorm:"not null;index"`
}

// User represents a registered account
type User struct {
	BaseModel
	Name         string `json:"name" gorm:"not null"`
	Email        string `json:"email" gorm:"unique;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Active       bool   `json:"active" gorm:"default:true"`
}

// ApiToken is a named long-lived credential; an alternative to session login
// for scripted clients. Only the SHA-256 hash of the token is stored, the
// plaintext is shown once at creation.
type ApiToken struct {
	BaseModel
	UserID    string `json:"user_id" gorm:"type:uuid;not null;index"`
	Name      string `json:"name" gorm:"not null"`
	TokenHash string `json:"-" gorm:"uniqueIndex;not null"`
}

// Hotel is part of the imported inventory; read-only for the search pipeline
type Hotel struct {
	BaseModel
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`
	LocationID  string `json:"location_id" gorm:"type:uuid;not null;index"`
	StarRating  int    `json:"star_rating" gorm:"check:star_rating BETWEEN 1 AND 5"`

	// Associations
	Location Location `json:"-" gorm:"foreignKey:LocationID"`
}

// Room belongs to exactly one hotel
type Room struct {
	BaseModel
	HotelID     string `json:"hotel_id" gorm:"type:uuid;not null;index"`
	Category    string `json:"category" gorm:"not null;index"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity" gorm:"not null"`

	// Associations
	Hotel Hotel `json:"-" gorm:"foreignKey:HotelID"`
}

// Offer belongs to exactly one room. Dates are a half-open interval
// [starts_on, ends_on); EffectivePrice is price minus discount and is the
// value all ranking uses.
type Offer struct {
	BaseModel
	RoomID         string    `json:"room_id" gorm:"type:uuid;not null;index"`
	Price          float64   `json:"price" gorm:"not null"`
	Discount       float64   `json:"discount" gorm:"default:0"`
	EffectivePrice float64   `json:"effective_price" gorm:"not null"`
	Availability   bool      `json:"availability" gorm:"default:true;index"`
	StartsOn       time.Time `json:"starts_on" gorm:"type:date;not null"`
	EndsOn         time.Time `json:"ends_on" gorm:"type:date;not null"`

	// Associations
	Room Room `json:"-" gorm:"foreignKey:RoomID"`
}

// Search is a user-submitted query plus the lifecycle state of its
// background matching job.
type Search struct {
	BaseModel
	UserID     string    `json:"user_id" gorm:"type:uuid;not null;index"`
	LocationID string    `json:"location_id" gorm:"type:uuid;not null;index"`
	StartsOn   time.Time `json:"starts_on" gorm:"type:date;not null"`
	EndsOn     time.Time `json:"ends_on" gorm:"type:date;not null"`
	Capacity   int       `json:"capacity" gorm:"not null;default:1"`
	Status     string    `json:"status" gorm:"default:'pending';check:status IN ('pending','started','completed','no_results','failed')"`
	Results    int       `json:"results" gorm:"default:0"`
}

// Fingerprint returns the deterministic cache key for this search. It hashes
// the query parameters, not the row id, so identical queries by the same user
// collapse onto one cached result.
func (s *Search) Fingerprint() string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d",
		s.UserID,
		s.LocationID,
		s.StartsOn.UTC().Format(DateFormat),
		s.EndsOn.UTC().Format(DateFormat),
		s.Capacity,
	)
	return utils.SHA256Hash(data)
}

// Booking records a confirmed reservation of an offer found via a search
type Booking struct {
	BaseModel
	UserID     string    `json:"user_id" gorm:"type:uuid;not null;index"`
	SearchID   string    `json:"search_id" gorm:"type:uuid;not null;index"`
	HotelID    string    `json:"hotel_id" gorm:"type:uuid;not null;index"`
	RoomID     string    `json:"room_id" gorm:"type:uuid;not null"`
	OfferID    string    `json:"offer_id" gorm:"type:uuid;not null"`
	Status     string    `json:"status" gorm:"default:'pending';check:status IN ('pending','confirmed','cancelled')"`
	StartsOn   time.Time `json:"starts_on" gorm:"type:date"`
	EndsOn     time.Time `json:"ends_on" gorm:"type:date"`
	Capacity   int       `json:"capacity" gorm:"default:1"`
	TotalPrice float64   `json:"total_price" gorm:"default:0"`
}

// Repository interfaces for the storage layer

type LocationRepository interface {
	Create(location *Location) error
	GetByID(id string) (*Location, error)
	Autocomplete(query string, limit int) ([]Location, error)
}

type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
}

type ApiTokenRepository interface {
	Create(token *ApiToken) error
	GetByHash(hash string) (*ApiToken, error)
	ListByUser(userID string) ([]ApiToken, error)
	// Delete is scoped to the owning user so one account cannot revoke
	// another's tokens.
	Delete(id, userID string) error
}

type HotelRepository interface {
	Create(hotel *Hotel) error
	GetByID(id string) (*Hotel, error)
	ListByLocation(ctx context.Context, locationID string) ([]Hotel, error)
}

type RoomRepository interface {
	Create(room *Room) error
	GetByID(id string) (*Room, error)
	ListByHotel(ctx context.Context, hotelID string) ([]Room, error)
}

type OfferRepository interface {
	Create(offer *Offer) error
	GetByID(id string) (*Offer, error)
	// ListByRoom prefilters on availability and the stay window as a storage
	// optimization; the interval matcher remains authoritative.
	ListByRoom(ctx context.Context, roomID string, startsOn, endsOn time.Time) ([]Offer, error)
}

type SearchRepository interface {
	Create(search *Search) error
	GetByID(id string) (*Search, error)
	Save(ctx context.Context, search *Search) error
	Delete(ctx context.Context, id string) error
}

type BookingRepository interface {
	Create(booking *Booking) error
	GetByID(id string) (*Booking, error)
}

// TableName methods for custom table names
func (Location) TableName() string { return "locations" }
func (User) TableName() string     { return "users" }
func (ApiToken) TableName() string { return "api_tokens" }
func (Hotel) TableName() string    { return "hotels" }
func (Room) TableName() string     { return "rooms" }
func (Offer) TableName() string    { return "offers" }
func (Search) TableName() string   { return "searches" }
func (Booking) TableName() string  { return "bookings" }

// Model validation methods
func (h *Hotel) Validate() error {
	if h.Title == "" {
		return fmt.Errorf("hotel title is required")
	}
	if h.LocationID == "" {
		return fmt.Errorf("location ID is required")
	}
	if h.StarRating < 1 || h.StarRating > 5 {
		return fmt.Errorf("star rating must be between 1 and 5, got %d", h.StarRating)
	}
	return nil
}

func (r *Room) Validate() error {
	if r.HotelID == "" {
		return fmt.Errorf("hotel ID is required")
	}
	if r.Capacity < 1 {
		return fmt.Errorf("room capacity must be at least 1, got %d", r.Capacity)
	}
	return nil
}

func (o *Offer) Validate() error {
	if o.RoomID == "" {
		return fmt.Errorf("room ID is required")
	}
	if o.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if o.Discount < 0 {
		return fmt.Errorf("discount cannot be negative")
	}
	if !o.EndsOn.After(o.StartsOn) {
		return fmt.Errorf("offer window must end after it starts")
	}
	return nil
}

func (s *Search) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	if s.LocationID == "" {
		return fmt.Errorf("location ID is required")
	}
	if s.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", s.Capacity)
	}
	if !s.EndsOn.After(s.StartsOn) {
		return fmt.Errorf("stay must end after it starts")
	}
	validStatuses := map[string]bool{
		SearchStatusPending:   true,
		SearchStatusStarted:   true,
		SearchStatusCompleted: true,
		SearchStatusNoResults: true,
		SearchStatusFailed:    true,
	}
	if !validStatuses[s.Status] {
		return fmt.Errorf("invalid search status: %s", s.Status)
	}
	return nil
}

func (b *Booking) Validate() error {
	if b.UserID == "" || b.SearchID == "" || b.HotelID == "" || b.RoomID == "" || b.OfferID == "" {
		return fmt.Errorf("booking references are incomplete")
	}
	validStatuses := map[string]bool{
		BookingStatusPending:   true,
		BookingStatusConfirmed: true,
		BookingStatusCancelled: true,
	}
	if !validStatuses[b.Status] {
		return fmt.Errorf("invalid booking status: %s", b.Status)
	}
	return nil
}

// GORM hooks
func (l *Location) BeforeCreate(tx *gorm.DB) error {
	l.ensureID()
	return nil
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.ensureID()
	return nil
}

func (t *ApiToken) BeforeCreate(tx *gorm.DB) error {
	t.ensureID()
	if t.Name == "" || t.TokenHash == "" {
		return fmt.Errorf("token name and hash are required")
	}
	return nil
}

func (h *Hotel) BeforeCreate(tx *gorm.DB) error {
	h.ensureID()
	return h.Validate()
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	r.ensureID()
	return r.Validate()
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	o.ensureID()
	if o.EffectivePrice == 0 {
		o.EffectivePrice = o.Price - o.Discount
	}
	return o.Validate()
}

func (s *Search) BeforeCreate(tx *gorm.DB) error {
	s.ensureID()
	if s.Status == "" {
		s.Status = SearchStatusPending
	}
	return s.Validate()
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	b.ensureID()
	return b.Validate()
}
