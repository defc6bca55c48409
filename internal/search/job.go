package search

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayfinder/backend/internal/models"
)

// ResultCache is the slice of the cache layer the search lifecycle needs.
type ResultCache interface {
	HasSearchResult(ctx context.Context, fingerprint string) (bool, error)
	GetSearchResult(ctx context.Context, fingerprint string) (*models.CachedResult, error)
	PutSearchResult(ctx context.Context, fingerprint string, result *models.CachedResult, ttl time.Duration) error
	PutSearchAlias(ctx context.Context, fromID, toID string, ttl time.Duration) error
	GetSearchAlias(ctx context.Context, id string) (string, error)
}

// Service owns the search lifecycle: it runs the matching job for a search,
// moves the row through pending -> started -> {completed, no_results, failed}
// and publishes the final payload to the cache. A search row is only ever
// mutated by its own job.
type Service struct {
	pipeline  *Pipeline
	searches  models.SearchRepository
	cache     ResultCache
	logger    *logrus.Logger
	resultTTL time.Duration
}

func NewService(
	pipeline *Pipeline,
	searches models.SearchRepository,
	cache ResultCache,
	logger *logrus.Logger,
	resultTTL time.Duration,
) *Service {
	return &Service{
		pipeline:  pipeline,
		searches:  searches,
		cache:     cache,
		logger:    logger,
		resultTTL: resultTTL,
	}
}

// Run executes the matching job for one search. Any error returned here is
// retried by the job queue; exhausted retries land in MarkFailed.
func (s *Service) Run(ctx context.Context, search *models.Search) error {
	fingerprint := search.Fingerprint()
	log := s.logger.WithFields(logrus.Fields{
		"search_id":   search.ID,
		"fingerprint": fingerprint,
	})

	// An unexpired cached entry means an identical search already finished.
	// This search is a duplicate: point lookups for its id at the winner and
	// remove the row.
	cached, err := s.cache.GetSearchResult(ctx, fingerprint)
	if err != nil {
		return fmt.Errorf("cache lookup failed: %w", err)
	}
	if cached != nil {
		return s.dedupe(ctx, search, cached, log)
	}

	search.Status = models.SearchStatusStarted
	if err := s.searches.Save(ctx, search); err != nil {
		return fmt.Errorf("failed to mark search started: %w", err)
	}

	hotels, err := s.pipeline.Assemble(ctx, search.LocationID, search.StartsOn, search.EndsOn, search.Capacity)
	if err != nil {
		return err
	}

	if len(hotels) == 0 {
		log.Info("Search finished with no results")
		return s.publish(ctx, search, models.SearchStatusNoResults, []models.HotelResult{}, fingerprint)
	}

	Rank(hotels)

	log.WithField("hotels", len(hotels)).Info("Search completed")
	return s.publish(ctx, search, models.SearchStatusCompleted, hotels, fingerprint)
}

// publish writes the terminal status and then the cache entry. The status
// write always lands first; readers re-check cache presence instead of
// trusting a completed status alone. A failed cache write surfaces as a job
// error so the whole run is retried.
func (s *Service) publish(ctx context.Context, search *models.Search, status string, hotels []models.HotelResult, fingerprint string) error {
	search.Status = status
	search.Results = len(hotels)
	if err := s.searches.Save(ctx, search); err != nil {
		return fmt.Errorf("failed to persist search status %s: %w", status, err)
	}

	result := &models.CachedResult{
		Search: *search,
		Hotels: hotels,
	}
	if err := s.cache.PutSearchResult(ctx, fingerprint, result, s.resultTTL); err != nil {
		return fmt.Errorf("failed to cache search result: %w", err)
	}

	return nil
}

// dedupe resolves a duplicate search against the already-cached winner: an
// alias keeps GET lookups for the duplicate id working, then the row goes
// away. Best-effort by design; two racing identical searches may both
// compute, and the later one defers here.
func (s *Service) dedupe(ctx context.Context, search *models.Search, cached *models.CachedResult, log *logrus.Entry) error {
	winnerID := cached.Search.ID
	if winnerID != "" && winnerID != search.ID {
		if err := s.cache.PutSearchAlias(ctx, search.ID, winnerID, s.resultTTL); err != nil {
			return fmt.Errorf("failed to write search alias: %w", err)
		}
	}

	if err := s.searches.Delete(ctx, search.ID); err != nil {
		return fmt.Errorf("failed to delete duplicate search: %w", err)
	}

	log.WithField("winner_id", winnerID).Info("Duplicate search deduplicated against cached result")
	return nil
}

// MarkFailed records terminal failure after the queue has exhausted retries.
func (s *Service) MarkFailed(search *models.Search, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	search.Status = models.SearchStatusFailed
	if err := s.searches.Save(ctx, search); err != nil {
		s.logger.WithError(err).WithField("search_id", search.ID).Error("Failed to persist failed search status")
		return
	}

	s.logger.WithError(cause).WithField("search_id", search.ID).Error("Search job failed permanently")
}

// Job adapts one search run to the job queue contract.
type Job struct {
	service *Service
	search  *models.Search
}

func NewJob(service *Service, search *models.Search) *Job {
	return &Job{
		service: service,
		search:  search,
	}
}

func (j *Job) Name() string {
	return "search:" + j.search.ID
}

func (j *Job) Run(ctx context.Context) error {
	return j.service.Run(ctx, j.search)
}

func (j *Job) Failed(err error) {
	j.service.MarkFailed(j.search, err)
}
