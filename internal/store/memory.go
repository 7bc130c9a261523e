package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

// Memory is an in-process Store used by tests and local demos
// (STORE_BACKEND=memory).
//
// Records are copied through encoding/json on the way in and out, so a
// caller mutating a returned value never changes what is stored. That also
// gives the same JSON fidelity the document backends have.
type Memory struct {
	mu           sync.RWMutex
	seq          int64
	papers       map[string]entry[models.PaperDoc]
	answers      map[string]entry[models.AnswerDoc]
	universities map[string]entry[models.University]
	users        map[string]entry[models.User]
	jobs         map[string]entry[models.ExtractionJob]

	// now is swappable so tests can control timestamps.
	now func() time.Time
}

// entry keeps an insertion sequence for stable newest-first ordering when
// two records share a timestamp.
type entry[T any] struct {
	seq int64
	val T
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		papers:       make(map[string]entry[models.PaperDoc]),
		answers:      make(map[string]entry[models.AnswerDoc]),
		universities: make(map[string]entry[models.University]),
		users:        make(map[string]entry[models.User]),
		jobs:         make(map[string]entry[models.ExtractionJob]),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the timestamp source.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) HealthCheck(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() error { return nil }

// --- Papers ---

func (m *Memory) CreatePaper(ctx context.Context, p *models.PaperDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Questions = models.NormalizeQuestions(p.Questions)

	m.seq++
	m.papers[p.ID] = entry[models.PaperDoc]{seq: m.seq, val: clone(*p)}
	return nil
}

func (m *Memory) UpdatePaper(ctx context.Context, p *models.PaperDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.papers[p.ID]
	if !ok {
		return notFound("paper", p.ID)
	}
	p.OwnerUID = e.val.OwnerUID
	p.CreatedAt = e.val.CreatedAt
	p.UpdatedAt = m.now()
	p.Questions = models.NormalizeQuestions(p.Questions)

	e.val = clone(*p)
	m.papers[p.ID] = e
	return nil
}

func (m *Memory) GetPaper(ctx context.Context, id string) (*models.PaperDoc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.papers[id]
	if !ok {
		return nil, notFound("paper", id)
	}
	p := clone(e.val)
	return &p, nil
}

func (m *Memory) DeletePaper(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.papers[id]; !ok {
		return notFound("paper", id)
	}
	delete(m.papers, id)
	return nil
}

func (m *Memory) ListPapersByOwner(ctx context.Context, ownerUID string) ([]models.PaperDoc, error) {
	return m.filterPapers(func(p *models.PaperDoc) bool { return p.OwnerUID == ownerUID }, 0), nil
}

func (m *Memory) ListPublishedPapers(ctx context.Context, limit int) ([]models.PaperDoc, error) {
	limit = NormalizeLimit(limit, DefaultPublishedLimit)
	return m.filterPapers(func(p *models.PaperDoc) bool { return p.IsPublished() }, limit), nil
}

func (m *Memory) SearchPublishedPapers(ctx context.Context, term string, limit int) ([]models.PaperDoc, error) {
	limit = NormalizeLimit(limit, DefaultSearchLimit)
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return m.ListPublishedPapers(ctx, limit)
	}

	return m.filterPapers(func(p *models.PaperDoc) bool {
		if !p.IsPublished() {
			return false
		}
		return hasPrefixFold(p.CourseCode, term) ||
			hasPrefixFold(p.CourseName, term) ||
			(p.UniversityName != nil && hasPrefixFold(*p.UniversityName, term))
	}, limit), nil
}

func (m *Memory) filterPapers(keep func(*models.PaperDoc) bool, limit int) []models.PaperDoc {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []entry[models.PaperDoc]
	for _, e := range m.papers {
		if keep(&e.val) {
			matched = append(matched, e)
		}
	}
	sortNewestFirst(matched, func(p models.PaperDoc) time.Time { return p.CreatedAt })
	return take(matched, limit)
}

// --- Answers ---

func (m *Memory) CreateAnswer(ctx context.Context, a *models.AnswerDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	a.ID = uuid.NewString()
	a.CreatedAt, a.UpdatedAt = now, now

	m.seq++
	m.answers[a.ID] = entry[models.AnswerDoc]{seq: m.seq, val: clone(*a)}
	return nil
}

func (m *Memory) UpdateAnswer(ctx context.Context, a *models.AnswerDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.answers[a.ID]
	if !ok {
		return notFound("answer", a.ID)
	}
	stored := e.val
	stored.Answers = clone(a.Answers)
	stored.Title = a.Title
	stored.UpdatedAt = m.now()

	e.val = stored
	m.answers[a.ID] = e
	*a = clone(stored)
	return nil
}

func (m *Memory) GetAnswer(ctx context.Context, id string) (*models.AnswerDoc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.answers[id]
	if !ok {
		return nil, notFound("answer", id)
	}
	a := clone(e.val)
	return &a, nil
}

func (m *Memory) DeleteAnswer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.answers[id]; !ok {
		return notFound("answer", id)
	}
	delete(m.answers, id)
	return nil
}

func (m *Memory) ListAnswersByOwner(ctx context.Context, ownerUID string) ([]models.AnswerDoc, error) {
	return m.filterAnswers(func(a *models.AnswerDoc) bool { return a.OwnerUID == ownerUID }, 0), nil
}

func (m *Memory) FindAnswerByOwnerAndPaper(ctx context.Context, ownerUID, paperID string) (*models.AnswerDoc, error) {
	found := m.filterAnswers(func(a *models.AnswerDoc) bool {
		return a.OwnerUID == ownerUID && a.PaperID == paperID
	}, 1)
	if len(found) == 0 {
		return nil, apperrors.NewNotFoundError("answer not found")
	}
	return &found[0], nil
}

func (m *Memory) filterAnswers(keep func(*models.AnswerDoc) bool, limit int) []models.AnswerDoc {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []entry[models.AnswerDoc]
	for _, e := range m.answers {
		if keep(&e.val) {
			matched = append(matched, e)
		}
	}
	sortNewestFirst(matched, func(a models.AnswerDoc) time.Time { return a.CreatedAt })
	return take(matched, limit)
}

// --- Universities ---

func (m *Memory) CreateUniversity(ctx context.Context, u *models.University) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Courses == nil {
		u.Courses = models.Courses{}
	}

	m.seq++
	m.universities[u.ID] = entry[models.University]{seq: m.seq, val: clone(*u)}
	return nil
}

func (m *Memory) UpdateUniversity(ctx context.Context, u *models.University) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.universities[u.ID]
	if !ok {
		return notFound("university", u.ID)
	}
	e.val.Name = u.Name
	e.val.Courses = clone(u.Courses)
	e.val.UpdatedAt = m.now()
	m.universities[u.ID] = e
	*u = clone(e.val)
	return nil
}

func (m *Memory) GetUniversity(ctx context.Context, id string) (*models.University, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.universities[id]
	if !ok {
		return nil, notFound("university", id)
	}
	u := clone(e.val)
	return &u, nil
}

func (m *Memory) DeleteUniversity(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.universities[id]; !ok {
		return notFound("university", id)
	}
	delete(m.universities, id)
	return nil
}

func (m *Memory) ListUniversities(ctx context.Context) ([]models.University, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.University, 0, len(m.universities))
	for _, e := range m.universities {
		out = append(out, clone(e.val))
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// --- Users ---

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.users {
		if strings.EqualFold(e.val.Email, u.Email) {
			return apperrors.NewConflictError("an account with this email already exists")
		}
	}

	now := m.now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now

	m.seq++
	m.users[u.ID] = entry[models.User]{seq: m.seq, val: *u}
	return nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.users {
		if strings.EqualFold(e.val.Email, email) {
			u := e.val
			return &u, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (m *Memory) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	u := e.val
	return &u, nil
}

func (m *Memory) UpdateProfile(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.users[u.ID]
	if !ok {
		return notFound("user", u.ID)
	}
	e.val.Name = u.Name
	e.val.PhotoURL = u.PhotoURL
	e.val.University = u.University
	e.val.Course = u.Course
	e.val.ProfileCompleted = u.ProfileCompleted
	e.val.UpdatedAt = m.now()
	m.users[u.ID] = e
	*u = e.val
	return nil
}

// --- Extraction jobs ---

func (m *Memory) CreateJob(ctx context.Context, j *models.ExtractionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	j.CreatedAt, j.UpdatedAt = now, now

	m.seq++
	m.jobs[j.ID] = entry[models.ExtractionJob]{seq: m.seq, val: clone(*j)}
	return nil
}

func (m *Memory) UpdateJob(ctx context.Context, j *models.ExtractionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.jobs[j.ID]
	if !ok {
		return notFound("extraction job", j.ID)
	}
	j.CreatedAt = e.val.CreatedAt
	j.UpdatedAt = m.now()
	e.val = clone(*j)
	m.jobs[j.ID] = e
	return nil
}

func (m *Memory) GetJob(ctx context.Context, id string) (*models.ExtractionJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.jobs[id]
	if !ok {
		return nil, notFound("extraction job", id)
	}
	j := clone(e.val)
	return &j, nil
}

func (m *Memory) ListJobsByOwner(ctx context.Context, ownerUID string, limit int) ([]models.ExtractionJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []entry[models.ExtractionJob]
	for _, e := range m.jobs {
		if e.val.OwnerUID == ownerUID {
			matched = append(matched, e)
		}
	}
	sortNewestFirst(matched, func(j models.ExtractionJob) time.Time { return j.CreatedAt })
	return take(matched, NormalizeLimit(limit, DefaultJobsLimit)), nil
}

// --- helpers ---

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, apperrors.NewNotFoundError(kind+" not found"))
}

func hasPrefixFold(s, lowerPrefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), lowerPrefix)
}

func sortNewestFirst[T any](items []entry[T], created func(T) time.Time) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i].val), created(items[j].val)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return items[i].seq > items[j].seq
	})
}

func take[T any](items []entry[T], limit int) []T {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]T, 0, len(items))
	for _, e := range items {
		out = append(out, clone(e.val))
	}
	return out
}

// clone deep-copies a value through JSON.
func clone[T any](v T) T {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("store: cannot clone %T: %v", v, err))
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("store: cannot clone %T: %v", v, err))
	}
	return out
}
