package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CohortListKey returns the cache key for the full cohort listing
func (r *CacheKeyStruct) CohortListKey() string {
	return "cohorts:all"
}

// CohortKey returns the cache key for a single cohort
func (r *CacheKeyStruct) CohortKey(cohortID int) string {
	return fmt.Sprintf("cohort:%d", cohortID)
}

var CacheKey = NewCacheKeyStruct()
