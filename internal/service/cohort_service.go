package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stemsi/cohorts-backend/internal/apperror"
	"github.com/stemsi/cohorts-backend/internal/cache"
	"github.com/stemsi/cohorts-backend/internal/config"
	"github.com/stemsi/cohorts-backend/internal/model"
	"github.com/stemsi/cohorts-backend/internal/repository"
)

// CohortService handles cohort business logic and the cohort read cache.
type CohortService interface {
	List(ctx context.Context) ([]model.Cohort, error)
	Get(ctx context.Context, id int) (*model.Cohort, error)
	ListStudents(ctx context.Context, cohortID int) ([]model.Student, error)
	Create(ctx context.Context, name string) (*model.Cohort, error)
	// Ensure returns the cohort with this name, creating it when missing.
	Ensure(ctx context.Context, name string) (*model.Cohort, error)
	Update(ctx context.Context, id int, name string) (*model.Cohort, error)
	Delete(ctx context.Context, id int) error
}

type cohortService struct {
	store repository.Store
	cache cache.Cache
	ttl   time.Duration
	log   zerolog.Logger

	// fillMu orders cache fills against invalidations; gen counts
	// invalidations. A fill is dropped when gen moved since its read began.
	fillMu sync.RWMutex
	gen    uint64
}

// NewCohortService creates a new CohortService. Reads go through c with the
// given ttl.
func NewCohortService(store repository.Store, c cache.Cache, ttl time.Duration, log zerolog.Logger) CohortService {
	return &cohortService{
		store: store,
		cache: c,
		ttl:   ttl,
		log:   log.With().Str("component", "cohort_service").Logger(),
	}
}

func (s *cohortService) List(ctx context.Context) ([]model.Cohort, error) {
	key := config.CacheKey.CohortListKey()

	var cached []model.Cohort
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	gen := s.generation()
	cohorts, err := s.store.Cohorts().List(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, gen, key, cohorts)
	return cohorts, nil
}

func (s *cohortService) Get(ctx context.Context, id int) (*model.Cohort, error) {
	key := config.CacheKey.CohortKey(id)

	cached := &model.Cohort{}
	if s.fromCache(ctx, key, cached) {
		return cached, nil
	}

	gen := s.generation()
	cohort, err := s.store.Cohorts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, gen, key, cohort)
	return cohort, nil
}

func (s *cohortService) ListStudents(ctx context.Context, cohortID int) ([]model.Student, error) {
	return s.store.Students().ListByCohort(ctx, cohortID)
}

func (s *cohortService) Create(ctx context.Context, name string) (*model.Cohort, error) {
	name, err := cohortName(name)
	if err != nil {
		return nil, err
	}

	cohort := &model.Cohort{Name: name}
	if err := s.store.Cohorts().Create(ctx, cohort); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cohort.ID)
	return cohort, nil
}

func (s *cohortService) Ensure(ctx context.Context, name string) (*model.Cohort, error) {
	name, err := cohortName(name)
	if err != nil {
		return nil, err
	}

	cohort, err := s.store.Cohorts().Ensure(ctx, name)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cohort.ID)
	return cohort, nil
}

func (s *cohortService) Update(ctx context.Context, id int, name string) (*model.Cohort, error) {
	name, err := cohortName(name)
	if err != nil {
		return nil, err
	}

	cohort := &model.Cohort{ID: id, Name: name}
	if err := s.store.Cohorts().Update(ctx, cohort); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return cohort, nil
}

func (s *cohortService) Delete(ctx context.Context, id int) error {
	// Students of this cohort are removed by the ON DELETE CASCADE constraint.
	if err := s.store.Cohorts().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func cohortName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.Validation("name", "name is a required field")
	}
	if utf8.RuneCountInString(name) > model.MaxCohortNameLen {
		return "", apperror.Validation("name", fmt.Sprintf("name must be a maximum of %d characters in length", model.MaxCohortNameLen))
	}
	return name, nil
}

// fromCache reports a hit. Cache errors are logged and treated as misses.
func (s *cohortService) fromCache(ctx context.Context, key string, dst any) bool {
	found, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	return found
}

func (s *cohortService) generation() uint64 {
	s.fillMu.RLock()
	defer s.fillMu.RUnlock()
	return s.gen
}

// toCache stores a value read from the database, unless a cohort write
// invalidated the cache after gen was taken; the value may then be stale.
func (s *cohortService) toCache(ctx context.Context, gen uint64, key string, value any) {
	s.fillMu.RLock()
	defer s.fillMu.RUnlock()
	if s.gen != gen {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (s *cohortService) invalidate(ctx context.Context, id int) {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()
	s.gen++

	keys := []string{config.CacheKey.CohortListKey(), config.CacheKey.CohortKey(id)}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
