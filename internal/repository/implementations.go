package repository

import (
	"context"
	"time"

	"github.com/stayfinder/backend/internal/models"
	"gorm.io/gorm"
)

// LocationRepositoryImpl implements LocationRepository
type LocationRepositoryImpl struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) models.LocationRepository {
	return &LocationRepositoryImpl{db: db}
}

func (r *LocationRepositoryImpl) Create(location *models.Location) error {
	return r.db.Create(location).Error
}

func (r *LocationRepositoryImpl) GetByID(id string) (*models.Location, error) {
	var location models.Location
	err := r.db.First(&location, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *LocationRepositoryImpl) Autocomplete(query string, limit int) ([]models.Location, error) {
	var locations []models.Location
	pattern := "%" + query + "%"
	err := r.db.Where("name ILIKE ? OR city ILIKE ? OR country ILIKE ?", pattern, pattern, pattern).
		Order("city, country").
		Limit(limit).
		Find(&locations).Error
	return locations, err
}

// UserRepositoryImpl implements UserRepository
type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) models.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepositoryImpl) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ApiTokenRepositoryImpl implements ApiTokenRepository
type ApiTokenRepositoryImpl struct {
	db *gorm.DB
}

func NewApiTokenRepository(db *gorm.DB) models.ApiTokenRepository {
	return &ApiTokenRepositoryImpl{db: db}
}

func (r *ApiTokenRepositoryImpl) Create(token *models.ApiToken) error {
	return r.db.Create(token).Error
}

func (r *ApiTokenRepositoryImpl) GetByHash(hash string) (*models.ApiToken, error) {
	var token models.ApiToken
	err := r.db.Where("token_hash = ?", hash).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *ApiTokenRepositoryImpl) ListByUser(userID string) ([]models.ApiToken, error) {
	var tokens []models.ApiToken
	err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&tokens).Error
	return tokens, err
}

func (r *ApiTokenRepositoryImpl) Delete(id, userID string) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.ApiToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HotelRepositoryImpl implements HotelRepository
type HotelRepositoryImpl struct {
	db *gorm.DB
}

func NewHotelRepository(db *gorm.DB) models.HotelRepository {
	return &HotelRepositoryImpl{db: db}
}

func (r *HotelRepositoryImpl) Create(hotel *models.Hotel) error {
	return r.db.Create(hotel).Error
}

func (r *HotelRepositoryImpl) GetByID(id string) (*models.Hotel, error) {
	var hotel models.Hotel
	err := r.db.First(&hotel, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &hotel, nil
}

func (r *HotelRepositoryImpl) ListByLocation(ctx context.Context, locationID string) ([]models.Hotel, error) {
	var hotels []models.Hotel
	err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("id").
		Find(&hotels).Error
	return hotels, err
}

// RoomRepositoryImpl implements RoomRepository
type RoomRepositoryImpl struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) models.RoomRepository {
	return &RoomRepositoryImpl{db: db}
}

func (r *RoomRepositoryImpl) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

func (r *RoomRepositoryImpl) GetByID(id string) (*models.Room, error) {
	var room models.Room
	err := r.db.First(&room, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *RoomRepositoryImpl) ListByHotel(ctx context.Context, hotelID string) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("id").
		Find(&rooms).Error
	return rooms, err
}

// OfferRepositoryImpl implements OfferRepository
type OfferRepositoryImpl struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) models.OfferRepository {
	return &OfferRepositoryImpl{db: db}
}

func (r *OfferRepositoryImpl) Create(offer *models.Offer) error {
	return r.db.Create(offer).Error
}

func (r *OfferRepositoryImpl) GetByID(id string) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.First(&offer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListByRoom returns available offers whose window could contain the stay.
// This is a storage-level prefilter; callers re-check containment before
// using an offer.
func (r *OfferRepositoryImpl) ListByRoom(ctx context.Context, roomID string, startsOn, endsOn time.Time) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND availability = ? AND starts_on <= ? AND ends_on >= ?",
			roomID, true, startsOn, endsOn).
		Order("id").
		Find(&offers).Error
	return offers, err
}

// SearchRepositoryImpl implements SearchRepository
type SearchRepositoryImpl struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) models.SearchRepository {
	return &SearchRepositoryImpl{db: db}
}

func (r *SearchRepositoryImpl) Create(search *models.Search) error {
	return r.db.Create(search).Error
}

func (r *SearchRepositoryImpl) GetByID(id string) (*models.Search, error) {
	var search models.Search
	err := r.db.First(&search, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &search, nil
}

func (r *SearchRepositoryImpl) Save(ctx context.Context, search *models.Search) error {
	return r.db.WithContext(ctx).Save(search).Error
}

func (r *SearchRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Search{}, "id = ?", id).Error
}

// BookingRepositoryImpl implements BookingRepository
type BookingRepositoryImpl struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) models.BookingRepository {
	return &BookingRepositoryImpl{db: db}
}

func (r *BookingRepositoryImpl) Create(booking *models.Booking) error {
	return r.db.Create(booking).Error
}

func (r *BookingRepositoryImpl) GetByID(id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Location models.LocationRepository
	User     models.UserRepository
	ApiToken models.ApiTokenRepository
	Hotel    models.HotelRepository
	Room     models.RoomRepository
	Offer    models.OfferRepository
	Search   models.SearchRepository
	Booking  models.BookingRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Location: NewLocationRepository(db),
		User:     NewUserRepository(db),
		ApiToken: NewApiTokenRepository(db),
		Hotel:    NewHotelRepository(db),
		Room:     NewRoomRepository(db),
		Offer:    NewOfferRepository(db),
		Search:   NewSearchRepository(db),
		Booking:  NewBookingRepository(db),
	}
}
