// Package storetest provides in-memory store fakes for service tests. The
// fakes share one Mem so a test can wire every store interface over the same
// data, and they copy entities on every read and write to mimic a real
// database returning fresh rows.
package storetest

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

// RunTx is a store.TxRunner that executes fn directly with a nil
// transaction. The fakes ignore WithTx rebinding, so tests get the same
// behavior inside and outside "transactions".
func RunTx(ctx context.Context, _ *sql.DB, fn store.TxFn) error {
	return fn(ctx, nil)
}

// Mem is the shared backing state for all fakes.
type Mem struct {
	mu sync.Mutex

	Users   map[uuid.UUID]*domain.UserProfile
	Terms   map[uuid.UUID]*domain.VocabularyTerm
	States  map[string]*domain.ReviewState // userID|termID
	Events  map[uuid.UUID]*domain.PracticeEvent
	Daily   map[string]*domain.DailyProgress // userID|YYYY-MM-DD
	Streaks map[uuid.UUID]*domain.Streak
	Defs    []*domain.AchievementDefinition
	Unlocks map[string]*domain.AchievementUnlock // userID|achievementID
}

// NewMem returns an empty Mem with all maps initialized.
func NewMem() *Mem {
	return &Mem{
		Users:   make(map[uuid.UUID]*domain.UserProfile),
		Terms:   make(map[uuid.UUID]*domain.VocabularyTerm),
		States:  make(map[string]*domain.ReviewState),
		Events:  make(map[uuid.UUID]*domain.PracticeEvent),
		Daily:   make(map[string]*domain.DailyProgress),
		Streaks: make(map[uuid.UUID]*domain.Streak),
		Unlocks: make(map[string]*domain.AchievementUnlock),
	}
}

func pairKey(a, b uuid.UUID) string { return a.String() + "|" + b.String() }

func dayKey(u uuid.UUID, d time.Time) string {
	return u.String() + "|" + d.UTC().Format("2006-01-02")
}

// AddUser stores a copy of the profile.
func (m *Mem) AddUser(u *domain.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *u
	m.Users[u.ID] = &c
}

// AddTerm stores a copy of the catalog term.
func (m *Mem) AddTerm(t *domain.VocabularyTerm) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *t
	m.Terms[t.ID] = &c
}

// AddDefinition appends a copy of the achievement definition to the catalog.
func (m *Mem) AddDefinition(d *domain.AchievementDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *d
	m.Defs = append(m.Defs, &c)
}

// State returns a copy of the stored review state, or nil if absent.
func (m *Mem) State(userID, termID uuid.UUID) *domain.ReviewState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.States[pairKey(userID, termID)]
	if !ok {
		return nil
	}
	c := *s
	return &c
}

// Day returns a copy of the stored daily aggregate, or nil if absent.
func (m *Mem) Day(userID uuid.UUID, day time.Time) *domain.DailyProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Daily[dayKey(userID, day)]
	if !ok {
		return nil
	}
	c := *d
	return &c
}

// UserStore returns a fake store.UserStore over m.
func (m *Mem) UserStore() store.UserStore { return &fakeUserStore{m} }

// TermStore returns a fake store.TermStore over m.
func (m *Mem) TermStore() store.TermStore { return &fakeTermStore{m} }

// ReviewStateStore returns a fake store.ReviewStateStore over m.
func (m *Mem) ReviewStateStore() store.ReviewStateStore { return &fakeReviewStateStore{m} }

// PracticeEventStore returns a fake store.PracticeEventStore over m.
func (m *Mem) PracticeEventStore() store.PracticeEventStore { return &fakeEventStore{m} }

// DailyProgressStore returns a fake store.DailyProgressStore over m.
func (m *Mem) DailyProgressStore() store.DailyProgressStore { return &fakeDailyStore{m} }

// StreakStore returns a fake store.StreakStore over m.
func (m *Mem) StreakStore() store.StreakStore { return &fakeStreakStore{m} }

// AchievementStore returns a fake store.AchievementStore over m.
func (m *Mem) AchievementStore() store.AchievementStore { return &fakeAchievementStore{m} }

type fakeUserStore struct{ m *Mem }

var _ store.UserStore = (*fakeUserStore)(nil)

func (f *fakeUserStore) Get(_ context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	u, ok := f.m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUserStore) AddXP(_ context.Context, id uuid.UUID, delta int) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	u, ok := f.m.Users[id]
	if !ok {
		return 0, store.ErrUserNotFound
	}
	u.TotalXP += delta
	return u.TotalXP, nil
}

func (f *fakeUserStore) WithTx(*sql.Tx) store.UserStore { return f }

type fakeTermStore struct{ m *Mem }

var _ store.TermStore = (*fakeTermStore)(nil)

func (f *fakeTermStore) GetByID(_ context.Context, id uuid.UUID) (*domain.VocabularyTerm, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	t, ok := f.m.Terms[id]
	if !ok {
		return nil, store.ErrTermNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeTermStore) ListUnreviewed(
	_ context.Context,
	userID uuid.UUID,
	category string,
	limit int,
) ([]*domain.VocabularyTerm, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	var out []*domain.VocabularyTerm
	for _, t := range f.m.Terms {
		if category != "" && t.Category != category {
			continue
		}
		if _, reviewed := f.m.States[pairKey(userID, t.ID)]; reviewed {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Difficulty != out[j].Difficulty {
			return out[i].Difficulty < out[j].Difficulty
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTermStore) WithTx(*sql.Tx) store.TermStore { return f }

type fakeReviewStateStore struct{ m *Mem }

var _ store.ReviewStateStore = (*fakeReviewStateStore)(nil)

func (f *fakeReviewStateStore) Get(
	_ context.Context,
	userID, termID uuid.UUID,
) (*domain.ReviewState, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	s, ok := f.m.States[pairKey(userID, termID)]
	if !ok {
		return nil, store.ErrReviewStateNotFound
	}
	c := *s
	return &c, nil
}

func (f *fakeReviewStateStore) GetForUpdate(
	ctx context.Context,
	userID, termID uuid.UUID,
) (*domain.ReviewState, error) {
	return f.Get(ctx, userID, termID)
}

func (f *fakeReviewStateStore) Create(_ context.Context, state *domain.ReviewState) error {
	if err := state.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	key := pairKey(state.UserID, state.TermID)
	if _, exists := f.m.States[key]; exists {
		return fmt.Errorf("%w: review state already exists", store.ErrConflict)
	}
	c := *state
	f.m.States[key] = &c
	return nil
}

func (f *fakeReviewStateStore) Update(_ context.Context, state *domain.ReviewState) error {
	if err := state.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	key := pairKey(state.UserID, state.TermID)
	if _, exists := f.m.States[key]; !exists {
		return store.ErrReviewStateNotFound
	}
	c := *state
	f.m.States[key] = &c
	return nil
}

func (f *fakeReviewStateStore) ListDue(
	_ context.Context,
	userID uuid.UUID,
	now time.Time,
	category string,
	limit int,
) ([]store.DueEntry, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	var out []store.DueEntry
	for _, s := range f.m.States {
		if s.UserID != userID || s.NextReviewAt.After(now) {
			continue
		}
		t, ok := f.m.Terms[s.TermID]
		if !ok {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		sc, tc := *s, *t
		out = append(out, store.DueEntry{Term: &tc, State: &sc})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].State, out[j].State
		if !a.NextReviewAt.Equal(b.NextReviewAt) {
			return a.NextReviewAt.Before(b.NextReviewAt)
		}
		if a.EaseFactor != b.EaseFactor {
			return a.EaseFactor < b.EaseFactor
		}
		return a.TermID.String() < b.TermID.String()
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReviewStateStore) CategoryMastery(
	_ context.Context,
	userID uuid.UUID,
	now time.Time,
	minRepetitions int,
	minEaseFactor float64,
) ([]store.CategoryMasteryRow, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	byCategory := make(map[string]*store.CategoryMasteryRow)
	for _, t := range f.m.Terms {
		row, ok := byCategory[t.Category]
		if !ok {
			row = &store.CategoryMasteryRow{Category: t.Category}
			byCategory[t.Category] = row
		}
		row.Total++
		s, learned := f.m.States[pairKey(userID, t.ID)]
		if !learned {
			continue
		}
		row.Learned++
		if s.Repetitions >= minRepetitions && s.EaseFactor >= minEaseFactor {
			row.Mastered++
		}
		if !s.NextReviewAt.After(now) {
			row.Due++
		}
	}

	out := make([]store.CategoryMasteryRow, 0, len(byCategory))
	for _, row := range byCategory {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (f *fakeReviewStateStore) WithTx(*sql.Tx) store.ReviewStateStore { return f }

type fakeEventStore struct{ m *Mem }

var _ store.PracticeEventStore = (*fakeEventStore)(nil)

func (f *fakeEventStore) Insert(_ context.Context, event *domain.PracticeEvent) (bool, error) {
	if err := event.Validate(); err != nil {
		return false, store.ErrInvalidEntity
	}
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, exists := f.m.Events[event.EventID]; exists {
		return false, nil
	}
	c := *event
	f.m.Events[event.EventID] = &c
	return true, nil
}

func (f *fakeEventStore) Get(_ context.Context, eventID uuid.UUID) (*domain.PracticeEvent, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	e, ok := f.m.Events[eventID]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEventStore) WithTx(*sql.Tx) store.PracticeEventStore { return f }

type fakeDailyStore struct{ m *Mem }

var _ store.DailyProgressStore = (*fakeDailyStore)(nil)

func (f *fakeDailyStore) Get(
	_ context.Context,
	userID uuid.UUID,
	day time.Time,
) (*domain.DailyProgress, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	d, ok := f.m.Daily[dayKey(userID, day)]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (f *fakeDailyStore) Apply(
	_ context.Context,
	userID uuid.UUID,
	day time.Time,
	delta store.DailyDelta,
	goalMinutes int,
) (*domain.DailyProgress, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	key := dayKey(userID, day)
	d, ok := f.m.Daily[key]
	if !ok {
		d = &domain.DailyProgress{
			UserID: userID,
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		}
		f.m.Daily[key] = d
	}
	d.VocabReviewed += delta.VocabReviewed
	d.ListeningCompleted += delta.ListeningCompleted
	d.SpeakingCompleted += delta.SpeakingCompleted
	d.PracticeMinutes += delta.PracticeMinutes
	d.XPEarned += delta.XPEarned
	if d.PracticeMinutes >= goalMinutes {
		d.GoalMet = true
	}
	c := *d
	return &c, nil
}

func (f *fakeDailyStore) ListRange(
	_ context.Context,
	userID uuid.UUID,
	start, end time.Time,
) ([]*domain.DailyProgress, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	var out []*domain.DailyProgress
	for _, d := range f.m.Daily {
		if d.UserID != userID || d.Date.Before(start) || d.Date.After(end) {
			continue
		}
		c := *d
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeDailyStore) Totals(
	_ context.Context,
	userID uuid.UUID,
) (*store.LifetimeTotals, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	totals := &store.LifetimeTotals{}
	for _, d := range f.m.Daily {
		if d.UserID != userID {
			continue
		}
		totals.VocabReviewed += d.VocabReviewed
		totals.ListeningCompleted += d.ListeningCompleted
		totals.SpeakingCompleted += d.SpeakingCompleted
		totals.PracticeMinutes += d.PracticeMinutes
		totals.XPEarned += d.XPEarned
		totals.DaysActive++
	}
	return totals, nil
}

func (f *fakeDailyStore) WithTx(*sql.Tx) store.DailyProgressStore { return f }

type fakeStreakStore struct{ m *Mem }

var _ store.StreakStore = (*fakeStreakStore)(nil)

func (f *fakeStreakStore) Get(_ context.Context, userID uuid.UUID) (*domain.Streak, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	s, ok := f.m.Streaks[userID]
	if !ok {
		return nil, store.ErrStreakNotFound
	}
	c := *s
	return &c, nil
}

func (f *fakeStreakStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Streak, error) {
	return f.Get(ctx, userID)
}

func (f *fakeStreakStore) Create(_ context.Context, streak *domain.Streak) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, exists := f.m.Streaks[streak.UserID]; exists {
		return fmt.Errorf("%w: streak already exists", store.ErrConflict)
	}
	c := *streak
	f.m.Streaks[streak.UserID] = &c
	return nil
}

func (f *fakeStreakStore) Update(_ context.Context, streak *domain.Streak) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, exists := f.m.Streaks[streak.UserID]; !exists {
		return store.ErrStreakNotFound
	}
	c := *streak
	f.m.Streaks[streak.UserID] = &c
	return nil
}

func (f *fakeStreakStore) WithTx(*sql.Tx) store.StreakStore { return f }

type fakeAchievementStore struct{ m *Mem }

var _ store.AchievementStore = (*fakeAchievementStore)(nil)

func (f *fakeAchievementStore) ListDefinitions(
	_ context.Context,
) ([]*domain.AchievementDefinition, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	out := make([]*domain.AchievementDefinition, 0, len(f.m.Defs))
	for _, d := range f.m.Defs {
		c := *d
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeAchievementStore) ListUnlocks(
	_ context.Context,
	userID uuid.UUID,
) ([]*domain.AchievementUnlock, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	var out []*domain.AchievementUnlock
	for _, u := range f.m.Unlocks {
		if u.UserID != userID {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnlockedAt.Before(out[j].UnlockedAt) })
	return out, nil
}

func (f *fakeAchievementStore) InsertUnlock(
	_ context.Context,
	unlock *domain.AchievementUnlock,
) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	key := pairKey(unlock.UserID, unlock.AchievementID)
	if _, exists := f.m.Unlocks[key]; exists {
		return false, nil
	}
	c := *unlock
	f.m.Unlocks[key] = &c
	return true, nil
}

func (f *fakeAchievementStore) WithTx(*sql.Tx) store.AchievementStore { return f }
