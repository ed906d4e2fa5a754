package crrs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
	"github.com/vijay-veer/swasthya-sarthi/internal/platform/lock"
)

func ptrInt(i int) *int { return &i }
func ptrBool(b bool) *bool { return &b }
func ptrStr(s string) *string { return &s }
func ptrFloat(f float64) *float64 { return &f }

// =========== Mock Signal Stores ===========

type mockVitalStore struct {
	readings []*patient.VitalReading
	err      error
}

func (m *mockVitalStore) FetchVitals(_ context.Context, profileID uuid.UUID, start, end time.Time) ([]*patient.VitalReading, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*patient.VitalReading
	for _, r := range m.readings {
		if r.PatientProfileID == profileID && !r.ReadingTimestamp.Before(start) && r.ReadingTimestamp.Before(end) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReadingTimestamp.Before(out[j].ReadingTimestamp) })
	return out, nil
}

type mockEncounterStore struct {
	encounters []*patient.Encounter
	err        error
}

func (m *mockEncounterStore) FetchEncounters(_ context.Context, userID uuid.UUID, start, end time.Time) ([]*patient.Encounter, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*patient.Encounter
	for _, e := range m.encounters {
		if e.UserID == userID && !e.EncounterTimestamp.Before(start) && e.EncounterTimestamp.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

// =========== Mock Score Repository ===========

type scoreKey struct {
	profile uuid.UUID
	date    string
}

type mockScoreRepo struct {
	mu        sync.Mutex
	scores    map[scoreKey]*Score
	upserts   int
	upsertErr error
}

func newMockScoreRepo() *mockScoreRepo {
	return &mockScoreRepo{scores: make(map[scoreKey]*Score)}
}

func (m *mockScoreRepo) put(s *Score) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.ScoreDate = DateOnly(s.ScoreDate)
	m.scores[scoreKey{s.PatientProfileID, cp.ScoreDate.Format(DateLayout)}] = &cp
}

func (m *mockScoreRepo) FetchPrevious(_ context.Context, profileID uuid.UUID, before time.Time) (*Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *Score
	cutoff := DateOnly(before)
	for k, s := range m.scores {
		if k.profile != profileID || !s.ScoreDate.Before(cutoff) {
			continue
		}
		if best == nil || s.ScoreDate.After(best.ScoreDate) {
			best = s
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (m *mockScoreRepo) Upsert(_ context.Context, s *Score) (*Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	m.upserts++
	k := scoreKey{s.PatientProfileID, DateOnly(s.ScoreDate).Format(DateLayout)}
	cp := *s
	cp.ScoreDate = DateOnly(s.ScoreDate)
	if existing, ok := m.scores[k]; ok {
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.ID = uuid.New()
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	m.scores[k] = &cp
	out := cp
	return &out, nil
}

func (m *mockScoreRepo) GetByDate(_ context.Context, profileID uuid.UUID, date time.Time) (*Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[scoreKey{profileID, DateOnly(date).Format(DateLayout)}]
	if !ok {
		return nil, ErrScoreNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockScoreRepo) ListByPatient(_ context.Context, profileID uuid.UUID, limit, offset int) ([]*Score, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*Score
	for k, s := range m.scores {
		if k.profile == profileID {
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ScoreDate.After(all[j].ScoreDate) })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockScoreRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scores)
}

// =========== Mock Profile Repository ===========

type mockProfileRepo struct {
	profiles map[uuid.UUID]*patient.PatientProfile
}

func (m *mockProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.PatientProfile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, patient.ErrProfileNotFound
	}
	return p, nil
}

func (m *mockProfileRepo) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id := range m.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

// =========== Fixtures ===========

var scoreDay = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

type fixture struct {
	profile    *patient.PatientProfile
	vitals     *mockVitalStore
	encounters *mockEncounterStore
	scores     *mockScoreRepo
	engine     *Engine
}

func newFixture() *fixture {
	f := &fixture{
		profile:    patient.NewProfile(uuid.New()),
		vitals:     &mockVitalStore{},
		encounters: &mockEncounterStore{},
		scores:     newMockScoreRepo(),
	}
	f.engine = NewEngine(f.vitals, f.encounters, f.scores, lock.NewKeyedMutex(), DefaultEngineConfig(), zerolog.Nop())
	return f
}

func (f *fixture) bpAt(at time.Time, sys, dia int) {
	f.vitals.readings = append(f.vitals.readings, &patient.VitalReading{
		ID: uuid.New(), PatientProfileID: f.profile.ID, UserID: f.profile.UserID,
		VitalType: patient.VitalBloodPressure, SystolicBP: ptrInt(sys), DiastolicBP: ptrInt(dia), ReadingTimestamp: at,
	})
}

func (f *fixture) encounterAt(at time.Time, e *patient.Encounter) {
	e.ID = uuid.New()
	e.UserID = f.profile.UserID
	e.EncounterTimestamp = at
	f.encounters.encounters = append(f.encounters.encounters, e)
}
