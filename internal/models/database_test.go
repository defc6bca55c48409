package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fingerprintSearch() *Search {
	s := &Search{
		UserID:     "user-1",
		LocationID: "loc-1",
		StartsOn:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:     time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		Capacity:   2,
		Status:     SearchStatusPending,
	}
	s.ID = "search-1"
	return s
}

func TestSearchFingerprint_Deterministic(t *testing.T) {
	a := fingerprintSearch()
	b := fingerprintSearch()
	b.ID = "search-2"
	b.Status = SearchStatusCompleted

	// Id and lifecycle state do not participate in the fingerprint.
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 64)
}

func TestSearchFingerprint_SensitiveToEveryParameter(t *testing.T) {
	base := fingerprintSearch().Fingerprint()

	mutations := map[string]func(*Search){
		"user":     func(s *Search) { s.UserID = "user-2" },
		"location": func(s *Search) { s.LocationID = "loc-2" },
		"starts":   func(s *Search) { s.StartsOn = s.StartsOn.AddDate(0, 0, 1) },
		"ends":     func(s *Search) { s.EndsOn = s.EndsOn.AddDate(0, 0, 1) },
		"capacity": func(s *Search) { s.Capacity = 3 },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			s := fingerprintSearch()
			mutate(s)
			assert.NotEqual(t, base, s.Fingerprint())
		})
	}
}

func TestSearchFingerprint_IgnoresTimeOfDay(t *testing.T) {
	a := fingerprintSearch()

	b := fingerprintSearch()
	b.StartsOn = time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	b.EndsOn = time.Date(2025, 6, 3, 9, 15, 0, 0, time.UTC)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestSearchValidate(t *testing.T) {
	require.NoError(t, fingerprintSearch().Validate())

	t.Run("inverted stay", func(t *testing.T) {
		s := fingerprintSearch()
		s.StartsOn, s.EndsOn = s.EndsOn, s.StartsOn
		assert.Error(t, s.Validate())
	})

	t.Run("zero capacity", func(t *testing.T) {
		s := fingerprintSearch()
		s.Capacity = 0
		assert.Error(t, s.Validate())
	})

	t.Run("unknown status", func(t *testing.T) {
		s := fingerprintSearch()
		s.Status = "running"
		assert.Error(t, s.Validate())
	})
}

func TestOfferValidate(t *testing.T) {
	valid := func() *Offer {
		return &Offer{
			RoomID:   "room-1",
			Price:    100,
			Discount: 10,
			StartsOn: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			EndsOn:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		}
	}

	require.NoError(t, valid().Validate())

	t.Run("empty window", func(t *testing.T) {
		o := valid()
		o.EndsOn = o.StartsOn
		assert.Error(t, o.Validate())
	})

	t.Run("negative price", func(t *testing.T) {
		o := valid()
		o.Price = -1
		assert.Error(t, o.Validate())
	})

	t.Run("negative discount", func(t *testing.T) {
		o := valid()
		o.Discount = -5
		assert.Error(t, o.Validate())
	})
}

func TestOfferBeforeCreate_DefaultsEffectivePrice(t *testing.T) {
	o := &Offer{
		RoomID:   "room-1",
		Price:    100,
		Discount: 25,
		StartsOn: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, o.BeforeCreate(nil))
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, 75.0, o.EffectivePrice)

	// A preset effective price is never recomputed.
	preset := &Offer{
		RoomID:         "room-1",
		Price:          100,
		Discount:       25,
		EffectivePrice: 60,
		StartsOn:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:         time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, preset.BeforeCreate(nil))
	assert.Equal(t, 60.0, preset.EffectivePrice)
}

func TestBookingValidate(t *testing.T) {
	valid := &Booking{
		UserID:   "user-1",
		SearchID: "search-1",
		HotelID:  "hotel-1",
		RoomID:   "room-1",
		OfferID:  "offer-1",
		Status:   BookingStatusConfirmed,
	}
	require.NoError(t, valid.Validate())

	incomplete := &Booking{UserID: "user-1", Status: BookingStatusPending}
	assert.Error(t, incomplete.Validate())
}
