package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/anomaly"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/crrs"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
)

func ptrInt(i int) *int { return &i }
func ptrBool(b bool) *bool { return &b }
func ptrStr(s string) *string { return &s }
func ptrFloat(f float64) *float64 { return &f }

var runDay = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

// =========== Mock Stores ===========

type mockVitalStore struct {
	mu       sync.Mutex
	readings []*patient.VitalReading
	err      error
}

func (m *mockVitalStore) FetchVitals(_ context.Context, profileID uuid.UUID, start, end time.Time) ([]*patient.VitalReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*patient.VitalReading
	for _, r := range m.readings {
		if r.PatientProfileID == profileID && !r.ReadingTimestamp.Before(start) && r.ReadingTimestamp.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockEncounterStore struct {
	mu         sync.Mutex
	encounters []*patient.Encounter
}

func (m *mockEncounterStore) FetchEncounters(_ context.Context, userID uuid.UUID, start, end time.Time) ([]*patient.Encounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*patient.Encounter
	for _, e := range m.encounters {
		if e.UserID == userID && !e.EncounterTimestamp.Before(start) && e.EncounterTimestamp.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockScoreRepo struct {
	mu     sync.Mutex
	scores map[string]*crrs.Score
}

func newMockScoreRepo() *mockScoreRepo {
	return &mockScoreRepo{scores: make(map[string]*crrs.Score)}
}

func scoreKey(id uuid.UUID, d time.Time) string { return id.String() + "/" + crrs.DateOnly(d).Format(crrs.DateLayout) }

func (m *mockScoreRepo) FetchPrevious(_ context.Context, profileID uuid.UUID, before time.Time) (*crrs.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *crrs.Score
	for _, s := range m.scores {
		if s.PatientProfileID == profileID && s.ScoreDate.Before(crrs.DateOnly(before)) &&
			(best == nil || s.ScoreDate.After(best.ScoreDate)) {
			best = s
		}
	}
	return best, nil
}

func (m *mockScoreRepo) Upsert(_ context.Context, s *crrs.Score) (*crrs.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := scoreKey(s.PatientProfileID, s.ScoreDate)
	cp := *s
	if existing, ok := m.scores[k]; ok {
		cp.ID = existing.ID
	} else {
		cp.ID = uuid.New()
	}
	m.scores[k] = &cp
	out := cp
	return &out, nil
}

func (m *mockScoreRepo) GetByDate(_ context.Context, profileID uuid.UUID, date time.Time) (*crrs.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[scoreKey(profileID, date)]
	if !ok {
		return nil, crrs.ErrScoreNotFound
	}
	return s, nil
}

func (m *mockScoreRepo) ListByPatient(context.Context, uuid.UUID, int, int) ([]*crrs.Score, int, error) {
	return nil, 0, nil
}

func (m *mockScoreRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scores)
}

type mockProfileRepo struct {
	profiles map[uuid.UUID]*patient.PatientProfile
	order    []uuid.UUID
}

func (m *mockProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.PatientProfile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, patient.ErrProfileNotFound
	}
	return p, nil
}

func (m *mockProfileRepo) ListIDs(context.Context) ([]uuid.UUID, error) {
	return m.order, nil
}

type mockUserRepo struct {
	users map[uuid.UUID]*patient.User
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, patient.ErrUserNotFound
	}
	return u, nil
}

// =========== Recording Notifier ===========

type delivery struct {
	kind   ActionType
	userID uuid.UUID
	action Action
}

type recordingNotifier struct {
	mu         sync.Mutex
	deliveries []delivery
	failOn     map[ActionType]bool
	panicOn    map[ActionType]bool
}

func (n *recordingNotifier) record(kind ActionType, to *patient.Subject, a Action) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.panicOn[kind] {
		panic("channel exploded")
	}
	n.deliveries = append(n.deliveries, delivery{kind: kind, userID: to.User.ID, action: a})
	if n.failOn[kind] {
		return errors.New("sms gateway unavailable")
	}
	return nil
}

func (n *recordingNotifier) Notify(_ context.Context, to *patient.Subject, a Action) error {
	return n.record(ActionNotify, to, a)
}

func (n *recordingNotifier) Alert(_ context.Context, to *patient.Subject, a Action) error {
	return n.record(ActionAlert, to, a)
}

func (n *recordingNotifier) CriticalAlert(_ context.Context, to *patient.Subject, a Action) error {
	return n.record(ActionCriticalAlert, to, a)
}

func (n *recordingNotifier) kinds() []ActionType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ActionType, 0, len(n.deliveries))
	for _, d := range n.deliveries {
		out = append(out, d.kind)
	}
	return out
}

type recordingQuests struct {
	created []Action
}

func (q *recordingQuests) CreateQuest(_ context.Context, _ *patient.Subject, a Action) error {
	q.created = append(q.created, a)
	return nil
}

// =========== Fixture ===========

type fixture struct {
	subject    *patient.Subject
	vitals     *mockVitalStore
	encounters *mockEncounterStore
	scores     *mockScoreRepo
	profiles   *mockProfileRepo
	users      *mockUserRepo
	notifier   *recordingNotifier
	engine     *crrs.Engine
	svc        *Service
}

func newFixture() *fixture {
	user := &patient.User{ID: uuid.New(), PhoneNumber: "+919800000001", FirstName: ptrStr("Meera")}
	profile := patient.NewProfile(user.ID)
	f := &fixture{
		subject:    &patient.Subject{Profile: profile, User: user},
		vitals:     &mockVitalStore{},
		encounters: &mockEncounterStore{},
		scores:     newMockScoreRepo(),
		profiles:   &mockProfileRepo{profiles: map[uuid.UUID]*patient.PatientProfile{profile.ID: profile}, order: []uuid.UUID{profile.ID}},
		users:      &mockUserRepo{users: map[uuid.UUID]*patient.User{user.ID: user}},
		notifier:   &recordingNotifier{failOn: map[ActionType]bool{}, panicOn: map[ActionType]bool{}},
	}
	f.engine = crrs.NewEngine(f.vitals, f.encounters, f.scores, nil, crrs.DefaultEngineConfig(), zerolog.Nop())
	detector := anomaly.NewDetectorWithClock(func() time.Time { return runDay.Add(21 * time.Hour) })
	executor := NewExecutor(f.notifier, f.engine, nil, zerolog.Nop())
	f.svc = NewService(f.engine, detector, executor, patient.NewResolver(f.profiles, f.users), zerolog.Nop())
	f.svc.now = func() time.Time { return runDay.Add(12 * time.Hour) }
	return f
}

func (f *fixture) bpAt(at time.Time, sys, dia int) {
	f.vitals.readings = append(f.vitals.readings, &patient.VitalReading{
		ID: uuid.New(), PatientProfileID: f.subject.Profile.ID, UserID: f.subject.User.ID,
		VitalType: patient.VitalBloodPressure, SystolicBP: ptrInt(sys), DiastolicBP: ptrInt(dia), ReadingTimestamp: at,
	})
}

func (f *fixture) encounterAt(at time.Time, e *patient.Encounter) {
	e.ID = uuid.New()
	e.UserID = f.subject.User.ID
	e.EncounterTimestamp = at
	f.encounters.encounters = append(f.encounters.encounters, e)
}

// addPatient registers another patient that resolves through the fixture's repos.
func (f *fixture) addPatient(withUser bool) uuid.UUID {
	user := &patient.User{ID: uuid.New(), PhoneNumber: "+919800000002"}
	profile := patient.NewProfile(user.ID)
	f.profiles.profiles[profile.ID] = profile
	f.profiles.order = append(f.profiles.order, profile.ID)
	if withUser {
		f.users.users[user.ID] = user
	}
	return profile.ID
}
