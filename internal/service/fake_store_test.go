package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stemsi/cohorts-backend/internal/apperror"
	"github.com/stemsi/cohorts-backend/internal/model"
	"github.com/stemsi/cohorts-backend/internal/repository"
)

// memStore is an in-memory repository.Store carrying the same constraints as
// the SQL schema: unique cohort names, student cohort FK, cascade on delete.
type memStore struct {
	mu       sync.Mutex
	cohorts  map[int]model.Cohort
	students map[int]model.Student
	nextID   int
	txCount  int
	locked   []int
	failWith error
}

func newMemStore() *memStore {
	return &memStore{cohorts: map[int]model.Cohort{}, students: map[int]model.Student{}}
}

func (m *memStore) Cohorts() repository.CohortRepository   { return memCohorts{m} }
func (m *memStore) Students() repository.StudentRepository { return memStudents{m} }

func (m *memStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	m.mu.Lock()
	m.txCount++
	m.mu.Unlock()
	return fn(m)
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

type memCohorts struct{ m *memStore }

func (r memCohorts) List(ctx context.Context) ([]model.Cohort, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	out := []model.Cohort{}
	for _, c := range r.m.cohorts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memCohorts) GetByID(ctx context.Context, id int) (*model.Cohort, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.cohorts[id]
	if !ok {
		return nil, apperror.NotFound(apperror.ResourceCohort, id)
	}
	return &c, nil
}

func (r memCohorts) nameTaken(name string, except int) bool {
	for _, c := range r.m.cohorts {
		if c.Name == name && c.ID != except {
			return true
		}
	}
	return false
}

func (r memCohorts) Create(ctx context.Context, cohort *model.Cohort) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.nameTaken(cohort.Name, 0) {
		return apperror.Conflict(apperror.ResourceCohort, "name")
	}
	cohort.ID = r.m.id()
	r.m.cohorts[cohort.ID] = *cohort
	return nil
}

func (r memCohorts) Ensure(ctx context.Context, name string) (*model.Cohort, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.cohorts {
		if c.Name == name {
			return &c, nil
		}
	}
	c := model.Cohort{ID: r.m.id(), Name: name}
	r.m.cohorts[c.ID] = c
	return &c, nil
}

func (r memCohorts) Update(ctx context.Context, cohort *model.Cohort) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.cohorts[cohort.ID]; !ok {
		return apperror.NotFound(apperror.ResourceCohort, cohort.ID)
	}
	if r.nameTaken(cohort.Name, cohort.ID) {
		return apperror.Conflict(apperror.ResourceCohort, "name")
	}
	r.m.cohorts[cohort.ID] = *cohort
	return nil
}

func (r memCohorts) Delete(ctx context.Context, id int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.cohorts[id]; !ok {
		return apperror.NotFound(apperror.ResourceCohort, id)
	}
	delete(r.m.cohorts, id)
	for sid, s := range r.m.students {
		if s.CohortID == id {
			delete(r.m.students, sid)
		}
	}
	return nil
}

func (r memCohorts) LockShared(ctx context.Context, id int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.cohorts[id]; !ok {
		return apperror.NotFound(apperror.ResourceCohort, id)
	}
	r.m.locked = append(r.m.locked, id)
	return nil
}

type memStudents struct{ m *memStore }

func (r memStudents) collect(keep func(model.Student) bool) []model.Student {
	out := []model.Student{}
	for _, s := range r.m.students {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memStudents) List(ctx context.Context) ([]model.Student, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.collect(func(model.Student) bool { return true }), nil
}

func (r memStudents) ListByCohort(ctx context.Context, cohortID int) ([]model.Student, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.collect(func(s model.Student) bool { return s.CohortID == cohortID }), nil
}

func (r memStudents) GetByID(ctx context.Context, id int) (*model.Student, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.students[id]
	if !ok {
		return nil, apperror.NotFound(apperror.ResourceStudent, id)
	}
	return &s, nil
}

func (r memStudents) GetDetail(ctx context.Context, id int) (*model.StudentDetail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.students[id]
	if !ok {
		return nil, apperror.NotFound(apperror.ResourceStudent, id)
	}
	return &model.StudentDetail{ID: s.ID, Name: s.Name, Cohort: r.m.cohorts[s.CohortID].Name}, nil
}

func (r memStudents) Create(ctx context.Context, student *model.Student) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.cohorts[student.CohortID]; !ok {
		return apperror.NotFound(apperror.ResourceCohort, student.CohortID)
	}
	student.ID = r.m.id()
	r.m.students[student.ID] = *student
	return nil
}

func (r memStudents) Update(ctx context.Context, id int, patch model.StudentPatch) (*model.Student, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.students[id]
	if !ok {
		return nil, apperror.NotFound(apperror.ResourceStudent, id)
	}
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.CohortID != nil {
		if _, ok := r.m.cohorts[*patch.CohortID]; !ok {
			return nil, apperror.NotFound(apperror.ResourceCohort, *patch.CohortID)
		}
		s.CohortID = *patch.CohortID
	}
	r.m.students[id] = s
	return &s, nil
}

func (r memStudents) Delete(ctx context.Context, id int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.students[id]; !ok {
		return apperror.NotFound(apperror.ResourceStudent, id)
	}
	delete(r.m.students, id)
	return nil
}

// recordingCache is a map-backed cache.Cache that counts hits.
type recordingCache struct {
	mu      sync.Mutex
	entries map[string]any
	hits    int
	deleted []string
	err     error
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string]any{}}
}

func (c *recordingCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	v, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	switch d := dst.(type) {
	case *[]model.Cohort:
		*d = v.([]model.Cohort)
	case *model.Cohort:
		*d = *(v.(*model.Cohort))
	}
	return true, nil
}

func (c *recordingCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[key] = value
	return nil
}

func (c *recordingCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.deleted = append(c.deleted, keys...)
	return c.err
}

// slowReadStore wraps memStore so cohort reads pause after fetching their
// rows until release is closed, letting writes land in between.
type slowReadStore struct {
	*memStore
	entered chan struct{}
	release chan struct{}
}

func newSlowReadStore(m *memStore) *slowReadStore {
	return &slowReadStore{memStore: m, entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (s *slowReadStore) Cohorts() repository.CohortRepository {
	return slowCohorts{memCohorts: memCohorts{s.memStore}, s: s}
}

func (s *slowReadStore) pause() {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.release
}

type slowCohorts struct {
	memCohorts
	s *slowReadStore
}

func (r slowCohorts) List(ctx context.Context) ([]model.Cohort, error) {
	out, err := r.memCohorts.List(ctx)
	r.s.pause()
	return out, err
}

func (r slowCohorts) GetByID(ctx context.Context, id int) (*model.Cohort, error) {
	c, err := r.memCohorts.GetByID(ctx, id)
	r.s.pause()
	return c, err
}
