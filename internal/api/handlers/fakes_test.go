package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayfinder/backend/internal/jobs"
	"github.com/stayfinder/backend/internal/middleware"
	"github.com/stayfinder/backend/internal/models"
	"github.com/stayfinder/backend/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Map-backed repository fakes. Missing ids surface as gorm.ErrRecordNotFound,
// same as the real implementations.

type fakeLocationRepo struct {
	locations   map[string]*models.Location
	suggestions []models.Location
	err         error
}

func (f *fakeLocationRepo) Create(location *models.Location) error {
	f.locations[location.ID] = location
	return nil
}

func (f *fakeLocationRepo) GetByID(id string) (*models.Location, error) {
	if location, ok := f.locations[id]; ok {
		return location, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLocationRepo) Autocomplete(string, int) ([]models.Location, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestions, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(id string) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeApiTokenRepo struct {
	tokens map[string]*models.ApiToken
}

func (f *fakeApiTokenRepo) Create(token *models.ApiToken) error {
	if token.ID == "" {
		token.ID = "token-1"
	}
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeApiTokenRepo) GetByHash(hash string) (*models.ApiToken, error) {
	for _, token := range f.tokens {
		if token.TokenHash == hash {
			return token, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeApiTokenRepo) ListByUser(userID string) ([]models.ApiToken, error) {
	var tokens []models.ApiToken
	for _, token := range f.tokens {
		if token.UserID == userID {
			tokens = append(tokens, *token)
		}
	}
	return tokens, nil
}

func (f *fakeApiTokenRepo) Delete(id, userID string) error {
	token, ok := f.tokens[id]
	if !ok || token.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(f.tokens, id)
	return nil
}

// fakeSessionStore records sessions in memory for the auth handlers.
type fakeSessionStore struct {
	sessions map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]string)}
}

func (f *fakeSessionStore) PutSession(_ context.Context, token, userID string, _ time.Duration) error {
	f.sessions[token] = userID
	return nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

type fakeHotelRepo struct {
	hotels map[string]*models.Hotel
}

func (f *fakeHotelRepo) Create(hotel *models.Hotel) error {
	f.hotels[hotel.ID] = hotel
	return nil
}

func (f *fakeHotelRepo) GetByID(id string) (*models.Hotel, error) {
	if hotel, ok := f.hotels[id]; ok {
		return hotel, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeHotelRepo) ListByLocation(context.Context, string) ([]models.Hotel, error) {
	return nil, nil
}

type fakeRoomRepo struct {
	rooms map[string]*models.Room
}

func (f *fakeRoomRepo) Create(room *models.Room) error {
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomRepo) GetByID(id string) (*models.Room, error) {
	if room, ok := f.rooms[id]; ok {
		return room, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoomRepo) ListByHotel(context.Context, string) ([]models.Room, error) {
	return nil, nil
}

type fakeOfferRepo struct {
	offers map[string]*models.Offer
}

func (f *fakeOfferRepo) Create(offer *models.Offer) error {
	f.offers[offer.ID] = offer
	return nil
}

func (f *fakeOfferRepo) GetByID(id string) (*models.Offer, error) {
	if offer, ok := f.offers[id]; ok {
		return offer, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOfferRepo) ListByRoom(context.Context, string, time.Time, time.Time) ([]models.Offer, error) {
	return nil, nil
}

type fakeSearchRepo struct {
	searches map[string]*models.Search
}

func (f *fakeSearchRepo) Create(search *models.Search) error {
	f.searches[search.ID] = search
	return nil
}

func (f *fakeSearchRepo) GetByID(id string) (*models.Search, error) {
	if search, ok := f.searches[id]; ok {
		return search, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSearchRepo) Save(_ context.Context, search *models.Search) error {
	f.searches[search.ID] = search
	return nil
}

func (f *fakeSearchRepo) Delete(_ context.Context, id string) error {
	delete(f.searches, id)
	return nil
}

type fakeBookingRepo struct {
	bookings map[string]*models.Booking
	err      error
}

func (f *fakeBookingRepo) Create(booking *models.Booking) error {
	if f.err != nil {
		return f.err
	}
	if booking.ID == "" {
		booking.ID = "booking-1"
	}
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeBookingRepo) GetByID(id string) (*models.Booking, error) {
	if booking, ok := f.bookings[id]; ok {
		return booking, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeSearchCache backs both the handler's read side and the search service's
// publish side.
type fakeSearchCache struct {
	results map[string]*models.CachedResult
	aliases map[string]string
}

func newFakeSearchCache() *fakeSearchCache {
	return &fakeSearchCache{
		results: make(map[string]*models.CachedResult),
		aliases: make(map[string]string),
	}
}

func (f *fakeSearchCache) GetSearchResult(_ context.Context, fingerprint string) (*models.CachedResult, error) {
	return f.results[fingerprint], nil
}

func (f *fakeSearchCache) HasSearchResult(_ context.Context, fingerprint string) (bool, error) {
	_, ok := f.results[fingerprint]
	return ok, nil
}

func (f *fakeSearchCache) PutSearchResult(_ context.Context, fingerprint string, result *models.CachedResult, _ time.Duration) error {
	f.results[fingerprint] = result
	return nil
}

func (f *fakeSearchCache) PutSearchAlias(_ context.Context, fromID, toID string, _ time.Duration) error {
	f.aliases[fromID] = toID
	return nil
}

func (f *fakeSearchCache) GetSearchAlias(_ context.Context, id string) (string, error) {
	return f.aliases[id], nil
}

// captureQueue records dispatched jobs without running them.
type captureQueue struct {
	enqueued []jobs.Job
	err      error
}

func (q *captureQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

func newFakeRepoManager() *repository.RepositoryManager {
	return &repository.RepositoryManager{
		Location: &fakeLocationRepo{locations: make(map[string]*models.Location)},
		User:     &fakeUserRepo{users: make(map[string]*models.User)},
		ApiToken: &fakeApiTokenRepo{tokens: make(map[string]*models.ApiToken)},
		Hotel:    &fakeHotelRepo{hotels: make(map[string]*models.Hotel)},
		Room:     &fakeRoomRepo{rooms: make(map[string]*models.Room)},
		Offer:    &fakeOfferRepo{offers: make(map[string]*models.Offer)},
		Search:   &fakeSearchRepo{searches: make(map[string]*models.Search)},
		Booking:  &fakeBookingRepo{bookings: make(map[string]*models.Booking)},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// asUser injects an authenticated user id the way the session middleware does.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func performJSONWithHeader(t *testing.T, router *gin.Engine, method, path string, body interface{}, header, value string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(header, value)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &parsed))
	return parsed
}
