package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stayfinder/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// opLog records the order of status writes and cache writes across fakes so
// tests can assert publish ordering.
type opLog struct {
	ops []string
}

func (l *opLog) record(op string) {
	l.ops = append(l.ops, op)
}

type fakeSearchRepo struct {
	log      *opLog
	statuses []string
	deleted  []string
	saveErr  error
}

func (f *fakeSearchRepo) Create(*models.Search) error            { return nil }
func (f *fakeSearchRepo) GetByID(string) (*models.Search, error) { return nil, fmt.Errorf("not implemented") }

func (f *fakeSearchRepo) Save(_ context.Context, search *models.Search) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.statuses = append(f.statuses, search.Status)
	if f.log != nil {
		f.log.record("save:" + search.Status)
	}
	return nil
}

func (f *fakeSearchRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	if f.log != nil {
		f.log.record("delete:" + id)
	}
	return nil
}

type fakeResultCache struct {
	log     *opLog
	results map[string]*models.CachedResult
	aliases map[string]string
	putErr  error
}

func newFakeResultCache(log *opLog) *fakeResultCache {
	return &fakeResultCache{
		log:     log,
		results: make(map[string]*models.CachedResult),
		aliases: make(map[string]string),
	}
}

func (f *fakeResultCache) HasSearchResult(_ context.Context, fingerprint string) (bool, error) {
	_, ok := f.results[fingerprint]
	return ok, nil
}

func (f *fakeResultCache) GetSearchResult(_ context.Context, fingerprint string) (*models.CachedResult, error) {
	return f.results[fingerprint], nil
}

func (f *fakeResultCache) PutSearchResult(_ context.Context, fingerprint string, result *models.CachedResult, _ time.Duration) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.results[fingerprint] = result
	if f.log != nil {
		f.log.record("cache:" + result.Search.Status)
	}
	return nil
}

func (f *fakeResultCache) PutSearchAlias(_ context.Context, fromID, toID string, _ time.Duration) error {
	f.aliases[fromID] = toID
	if f.log != nil {
		f.log.record("alias:" + fromID + "->" + toID)
	}
	return nil
}

func (f *fakeResultCache) GetSearchAlias(_ context.Context, id string) (string, error) {
	return f.aliases[id], nil
}

func newTestSearch(id string) *models.Search {
	s := &models.Search{
		UserID:     "user-1",
		LocationID: "loc-l",
		StartsOn:   date(2025, 6, 1),
		EndsOn:     date(2025, 6, 3),
		Capacity:   2,
		Status:     models.SearchStatusPending,
	}
	s.ID = id
	return s
}

// servicePipeline returns a pipeline backed by one hotel/room/offer that
// matches newTestSearch.
func servicePipeline() *Pipeline {
	hotels := &fakeHotelRepo{byLocation: map[string][]models.Hotel{
		"loc-l": {testHotel("hotel-1", "loc-l")},
	}}
	rooms := &fakeRoomRepo{byHotel: map[string][]models.Room{
		"hotel-1": {testRoom("room-1", "hotel-1", 2)},
	}}
	offers := &fakeOfferRepo{byRoom: map[string][]models.Offer{
		"room-1": {testOffer("offer-1", "room-1", 120, true, date(2025, 5, 1), date(2025, 7, 1))},
	}}
	return NewPipeline(hotels, rooms, offers, quietLogger())
}

func TestServiceRun_CompletedFlow(t *testing.T) {
	log := &opLog{}
	searches := &fakeSearchRepo{log: log}
	cache := newFakeResultCache(log)

	service := NewService(servicePipeline(), searches, cache, quietLogger(), time.Hour)
	search := newTestSearch("search-1")

	require.NoError(t, service.Run(context.Background(), search))

	assert.Equal(t, []string{models.SearchStatusStarted, models.SearchStatusCompleted}, searches.statuses)
	assert.Equal(t, models.SearchStatusCompleted, search.Status)
	assert.Equal(t, 1, search.Results)

	cached, err := cache.GetSearchResult(context.Background(), search.Fingerprint())
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Len(t, cached.Hotels, search.Results)
	assert.Equal(t, models.SearchStatusCompleted, cached.Search.Status)

	// Terminal status lands in storage before the payload reaches the cache.
	assert.Equal(t, []string{"save:started", "save:completed", "cache:completed"}, log.ops)
}

func TestServiceRun_NoResultsFlow(t *testing.T) {
	searches := &fakeSearchRepo{}
	cache := newFakeResultCache(nil)

	// Empty inventory everywhere.
	pipeline := NewPipeline(
		&fakeHotelRepo{byLocation: map[string][]models.Hotel{}},
		&fakeRoomRepo{},
		&fakeOfferRepo{},
		quietLogger(),
	)

	service := NewService(pipeline, searches, cache, quietLogger(), time.Hour)
	search := newTestSearch("search-2")

	require.NoError(t, service.Run(context.Background(), search))

	assert.Equal(t, models.SearchStatusNoResults, search.Status)
	assert.Equal(t, 0, search.Results)

	// An empty outcome is still cached so duplicates short-circuit.
	cached, err := cache.GetSearchResult(context.Background(), search.Fingerprint())
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Empty(t, cached.Hotels)
}

func TestServiceRun_DeduplicatesAgainstCachedResult(t *testing.T) {
	searches := &fakeSearchRepo{}
	cache := newFakeResultCache(nil)

	service := NewService(servicePipeline(), searches, cache, quietLogger(), time.Hour)

	winner := newTestSearch("search-winner")
	require.NoError(t, service.Run(context.Background(), winner))
	savedBefore := len(searches.statuses)

	// Identical parameters, different id: same fingerprint.
	duplicate := newTestSearch("search-dup")
	require.Equal(t, winner.Fingerprint(), duplicate.Fingerprint())
	require.NoError(t, service.Run(context.Background(), duplicate))

	// No matching work happened for the duplicate.
	assert.Equal(t, savedBefore, len(searches.statuses))
	assert.Equal(t, []string{"search-dup"}, searches.deleted)

	alias, err := cache.GetSearchAlias(context.Background(), "search-dup")
	require.NoError(t, err)
	assert.Equal(t, "search-winner", alias)
}

func TestServiceRun_PipelineErrorPropagates(t *testing.T) {
	boom := fmt.Errorf("storage down")
	searches := &fakeSearchRepo{}
	cache := newFakeResultCache(nil)

	pipeline := NewPipeline(&fakeHotelRepo{err: boom}, &fakeRoomRepo{}, &fakeOfferRepo{}, quietLogger())
	service := NewService(pipeline, searches, cache, quietLogger(), time.Hour)
	search := newTestSearch("search-3")

	err := service.Run(context.Background(), search)
	assert.ErrorIs(t, err, boom)

	// The row is left in started; no terminal status, nothing cached.
	assert.Equal(t, []string{models.SearchStatusStarted}, searches.statuses)
	cached, _ := cache.GetSearchResult(context.Background(), search.Fingerprint())
	assert.Nil(t, cached)
}

func TestServiceRun_CacheWriteFailureIsRetryable(t *testing.T) {
	searches := &fakeSearchRepo{}
	cache := newFakeResultCache(nil)
	cache.putErr = fmt.Errorf("redis unavailable")

	service := NewService(servicePipeline(), searches, cache, quietLogger(), time.Hour)
	search := newTestSearch("search-4")

	err := service.Run(context.Background(), search)
	require.Error(t, err)

	// Status already persisted; the retry re-runs the whole job and the
	// cache write gets another chance.
	assert.Contains(t, searches.statuses, models.SearchStatusCompleted)
	cached, _ := cache.GetSearchResult(context.Background(), search.Fingerprint())
	assert.Nil(t, cached)
}

func TestMarkFailed(t *testing.T) {
	searches := &fakeSearchRepo{}
	service := NewService(servicePipeline(), searches, newFakeResultCache(nil), quietLogger(), time.Hour)

	search := newTestSearch("search-5")
	service.MarkFailed(search, fmt.Errorf("exhausted retries"))

	assert.Equal(t, models.SearchStatusFailed, search.Status)
	assert.Equal(t, []string{models.SearchStatusFailed}, searches.statuses)
}

func TestJobAdapter(t *testing.T) {
	searches := &fakeSearchRepo{}
	service := NewService(servicePipeline(), searches, newFakeResultCache(nil), quietLogger(), time.Hour)
	search := newTestSearch("search-6")

	job := NewJob(service, search)
	assert.Equal(t, "search:search-6", job.Name())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, models.SearchStatusCompleted, search.Status)

	job.Failed(fmt.Errorf("boom"))
	assert.Equal(t, models.SearchStatusFailed, search.Status)
}
