package seeder

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayfinder/backend/internal/models"
	"github.com/stayfinder/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Synthetic inventory generator. Deterministic for a given seed so demo
// environments are reproducible.

var countries = map[string][]string{
	"Germany":        {"Berlin", "Munich", "Hamburg", "Cologne", "Frankfurt", "Stuttgart", "Dresden", "Leipzig"},
	"France":         {"Paris", "Lyon", "Marseille", "Bordeaux", "Nice", "Toulouse", "Lille", "Strasbourg"},
	"Italy":          {"Rome", "Milan", "Florence", "Venice", "Naples", "Turin", "Bologna", "Verona"},
	"Spain":          {"Madrid", "Barcelona", "Seville", "Valencia", "Bilbao", "Malaga", "Granada", "Alicante"},
	"United Kingdom": {"London", "Manchester", "Edinburgh", "Birmingham", "Glasgow", "Bristol", "Oxford", "Cambridge"},
	"Netherlands":    {"Amsterdam", "Rotterdam", "Utrecht", "The Hague", "Eindhoven", "Groningen", "Leiden", "Delft"},
	"Austria":        {"Vienna", "Salzburg", "Graz", "Innsbruck", "Linz", "Hallstatt", "Bregenz", "Wels"},
	"Switzerland":    {"Zurich", "Geneva", "Basel", "Bern", "Lausanne", "Lucerne", "Interlaken", "Zermatt"},
	"United States":  {"New York", "San Francisco", "Los Angeles", "Chicago", "Miami", "Boston", "Seattle", "Austin"},
	"Portugal":       {"Lisbon", "Porto", "Faro", "Coimbra", "Braga", "Aveiro", "Evora", "Sintra"},
}

var locationQualifiers = []string{
	"City Center", "Old Town", "Riverside", "Harbor", "Business District",
	"University Quarter", "Central Station", "Lakeside", "Airport Area",
	"Historic Quarter", "Market Square", "Theater District", "Seaside",
	"Museum Mile", "Cathedral Quarter", "Canal District",
}

var hotelAdjectives = []string{
	"Grand", "Royal", "Urban", "Golden", "Emerald", "Ivory", "Azure", "Velvet",
	"Majestic", "Quiet", "Noble", "Modern", "Classic", "Boutique", "Panorama",
	"Skyline", "Central", "Opera", "Garden", "Park", "Regency", "Crown",
	"Alpine", "Atlantic", "Continental", "Summit", "Harbor", "Riverview",
	"Sunset", "Silver", "Capital",
}

var hotelNouns = []string{
	"Hotel", "Residence", "Suites", "Inn", "Plaza", "Lodge", "House",
	"Retreat", "Palace", "Resort", "Courtyard", "Terrace", "Villa",
	"Pavilion", "Hall", "Landing",
}

type roomCategory struct {
	name     string
	capacity int
	baseRate float64
}

var roomCategories = []roomCategory{
	{"Standard", 2, 80},
	{"Standard Twin", 2, 90},
	{"Deluxe", 2, 130},
	{"Deluxe Twin", 2, 140},
	{"Single", 1, 60},
	{"Family", 4, 180},
	{"Junior Suite", 3, 220},
	{"Suite", 4, 320},
}

type Options struct {
	Seed              int64
	HotelsPerLocation int
	RoomsPerHotel     int
	OffersPerRoom     int
	HorizonDays       int // how far into the future offer windows reach
}

func DefaultOptions() Options {
	return Options{
		Seed:              42,
		HotelsPerLocation: 5,
		RoomsPerHotel:     4,
		OffersPerRoom:     3,
		HorizonDays:       180,
	}
}

type Seeder struct {
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
	rng         *rand.Rand
	options     Options
}

func New(repoManager *repository.RepositoryManager, logger *logrus.Logger, options Options) *Seeder {
	return &Seeder{
		repoManager: repoManager,
		logger:      logger,
		rng:         rand.New(rand.NewSource(options.Seed)),
		options:     options,
	}
}

// Seed populates locations, hotels, rooms, offers and a demo user.
func (s *Seeder) Seed() error {
	s.logger.Info("Seeding synthetic inventory...")

	if err := s.seedDemoUser(); err != nil {
		return err
	}

	totalHotels := 0
	totalOffers := 0

	for country, cities := range countries {
		for _, city := range cities {
			qualifier := locationQualifiers[s.rng.Intn(len(locationQualifiers))]
			location := &models.Location{
				Name:    fmt.Sprintf("%s %s", city, qualifier),
				City:    city,
				Country: country,
			}
			if err := s.repoManager.Location.Create(location); err != nil {
				return fmt.Errorf("failed to create location %s: %w", location.Name, err)
			}

			for i := 0; i < s.options.HotelsPerLocation; i++ {
				offers, err := s.seedHotel(location)
				if err != nil {
					return err
				}
				totalHotels++
				totalOffers += offers
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"hotels": totalHotels,
		"offers": totalOffers,
	}).Info("Seeding completed")

	return nil
}

func (s *Seeder) seedDemoUser() error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	user := &models.User{
		Name:         "Demo User",
		Email:        "demo@example.com",
		PasswordHash: string(hash),
		Active:       true,
	}

	if err := s.repoManager.User.Create(user); err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}

	return nil
}

func (s *Seeder) seedHotel(location *models.Location) (int, error) {
	adjective := hotelAdjectives[s.rng.Intn(len(hotelAdjectives))]
	noun := hotelNouns[s.rng.Intn(len(hotelNouns))]
	stars := 1 + s.rng.Intn(5)

	hotel := &models.Hotel{
		Title:       fmt.Sprintf("%s %s %s", adjective, location.City, noun),
		Description: fmt.Sprintf("A %d-star stay near %s.", stars, location.Name),
		LocationID:  location.ID,
		StarRating:  stars,
	}
	if err := s.repoManager.Hotel.Create(hotel); err != nil {
		return 0, fmt.Errorf("failed to create hotel %s: %w", hotel.Title, err)
	}

	offers := 0
	for i := 0; i < s.options.RoomsPerHotel; i++ {
		category := roomCategories[s.rng.Intn(len(roomCategories))]

		room := &models.Room{
			HotelID:     hotel.ID,
			Category:    category.name,
			Description: fmt.Sprintf("%s room for up to %d guests", category.name, category.capacity),
			Capacity:    category.capacity,
		}
		if err := s.repoManager.Room.Create(room); err != nil {
			return 0, fmt.Errorf("failed to create room: %w", err)
		}

		for j := 0; j < s.options.OffersPerRoom; j++ {
			if err := s.seedOffer(room, category, stars); err != nil {
				return 0, err
			}
			offers++
		}
	}

	return offers, nil
}

func (s *Seeder) seedOffer(room *models.Room, category roomCategory, stars int) error {
	startOffset := s.rng.Intn(s.options.HorizonDays)
	nights := 7 + s.rng.Intn(56)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	startsOn := today.AddDate(0, 0, startOffset)
	endsOn := startsOn.AddDate(0, 0, nights)

	price := category.baseRate * (1 + 0.25*float64(stars-1)) * (0.85 + 0.3*s.rng.Float64())
	discount := 0.0
	if s.rng.Float64() < 0.3 {
		discount = price * 0.1 * float64(1+s.rng.Intn(3))
	}

	offer := &models.Offer{
		RoomID:         room.ID,
		Price:          round2(price),
		Discount:       round2(discount),
		EffectivePrice: round2(price - discount),
		Availability:   s.rng.Float64() < 0.9,
		StartsOn:       startsOn,
		EndsOn:         endsOn,
	}

	if err := s.repoManager.Offer.Create(offer); err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
