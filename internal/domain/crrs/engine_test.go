package crrs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
	"github.com/vijay-veer/swasthya-sarthi/internal/platform/lock"
)

func TestEngine_ComputeStableDay(t *testing.T) {
	f := newFixture()
	f.scores.put(&Score{PatientProfileID: f.profile.ID, ScoreDate: scoreDay.AddDate(0, 0, -1), Value: 50, RiskTier: TierHigh})

	for d := 3; d >= 1; d-- {
		f.bpAt(scoreDay.AddDate(0, 0, -d).Add(9*time.Hour), 130, 85)
	}
	f.bpAt(scoreDay.Add(9*time.Hour), 130, 85)
	f.encounterAt(scoreDay.Add(20*time.Hour), &patient.Encounter{MedicationTaken: ptrBool(true), SleepHours: ptrFloat(8)})

	score, err := f.engine.Compute(context.Background(), f.profile, scoreDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(score.Value, 47.5) {
		t.Errorf("expected 47.5, got %v", score.Value)
	}
	if score.RiskTier != TierModerate {
		t.Errorf("expected MODERATE, got %s", score.RiskTier)
	}
	if !approx(score.Delta, -2.5) || score.PreviousValue != 50 {
		t.Errorf("unexpected delta %v / previous %v", score.Delta, score.PreviousValue)
	}
	want := Contributions{Vitals: -1, Lifestyle: -0.5, Adherence: -1, Symptoms: 0, Trend: 0}
	if score.Contributions != want {
		t.Errorf("unexpected contributions %+v", score.Contributions)
	}
	if !strings.Contains(score.Explanation, "47.5 (Moderate Risk)") {
		t.Errorf("unexpected explanation %q", score.Explanation)
	}
	if !strings.Contains(score.CalculationDetails, "New Score: 47.50") {
		t.Errorf("unexpected details %q", score.CalculationDetails)
	}
}

func TestEngine_FirstScoreUsesInitial(t *testing.T) {
	f := newFixture()
	score, err := f.engine.Compute(context.Background(), f.profile, scoreDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No vitals (+2), no medication log (+1), sparse trend (+1).
	if score.PreviousValue != DefaultInitialScore || !approx(score.Value, 54) {
		t.Errorf("expected 50 -> 54, got %v -> %v", score.PreviousValue, score.Value)
	}
	if score.Contributions.Vitals != MissingVitalsPenalty {
		t.Errorf("expected missing vitals penalty, got %v", score.Contributions.Vitals)
	}
}

func TestEngine_Idempotent(t *testing.T) {
	f := newFixture()
	f.bpAt(scoreDay.Add(8*time.Hour), 165, 95)
	ctx := context.Background()

	first, err := f.engine.Compute(ctx, f.profile, scoreDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.engine.Compute(ctx, f.profile, scoreDay.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.scores.count() != 1 {
		t.Fatalf("expected one stored score, got %d", f.scores.count())
	}
	if first.ID != second.ID {
		t.Errorf("expected same record, got %s and %s", first.ID, second.ID)
	}
	if first.Value != second.Value || first.Explanation != second.Explanation {
		t.Errorf("recompute changed result: %v vs %v", first.Value, second.Value)
	}
}

func TestEngine_ChainsPreviousDay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	day1, err := f.engine.Compute(ctx, f.profile, scoreDay.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	day2, err := f.engine.Compute(ctx, f.profile, scoreDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day2.PreviousValue != day1.Value {
		t.Errorf("expected previous %v, got %v", day1.Value, day2.PreviousValue)
	}

	// Recomputing the earlier day must not read the later one.
	again, err := f.engine.Compute(ctx, f.profile, scoreDay.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.PreviousValue != DefaultInitialScore {
		t.Errorf("expected initial score as previous, got %v", again.PreviousValue)
	}
}

func TestEngine_Clamps(t *testing.T) {
	f := newFixture()
	f.scores.put(&Score{PatientProfileID: f.profile.ID, ScoreDate: scoreDay.AddDate(0, 0, -1), Value: 95, RiskTier: TierCritical})
	f.bpAt(scoreDay.Add(8*time.Hour), 190, 120)
	f.encounterAt(scoreDay.Add(9*time.Hour), &patient.Encounter{Symptoms: ptrStr("chest pain"), MedicationMissed: ptrBool(true)})

	score, err := f.engine.Compute(context.Background(), f.profile, scoreDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.Value != MaxScore {
		t.Errorf("expected clamp to %v, got %v", MaxScore, score.Value)
	}
	if !approx(score.Delta, 5) {
		t.Errorf("expected delta from clamped value, got %v", score.Delta)
	}

	low := newFixture()
	low.scores.put(&Score{PatientProfileID: low.profile.ID, ScoreDate: scoreDay.AddDate(0, 0, -1), Value: 1, RiskTier: TierLow})
	low.bpAt(scoreDay.Add(8*time.Hour), 125, 82)
	low.bpAt(scoreDay.Add(9*time.Hour), 124, 81)
	low.bpAt(scoreDay.Add(10*time.Hour), 123, 80)
	low.encounterAt(scoreDay.Add(9*time.Hour), &patient.Encounter{ActivityMinutes: ptrInt(60), MedicationTaken: ptrBool(true)})

	score, err = low.engine.Compute(context.Background(), low.profile, scoreDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.Value != MinScore || score.RiskTier != TierLow {
		t.Errorf("expected clamp to %v LOW, got %v %s", MinScore, score.Value, score.RiskTier)
	}
}

func TestEngine_StoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	ctx := context.Background()

	f := newFixture()
	f.vitals.err = boom
	if _, err := f.engine.Compute(ctx, f.profile, scoreDay); !errors.Is(err, boom) {
		t.Errorf("expected vitals error, got %v", err)
	}
	if f.scores.count() != 0 {
		t.Error("expected nothing stored on read failure")
	}

	f = newFixture()
	f.encounters.err = boom
	if _, err := f.engine.Compute(ctx, f.profile, scoreDay); !errors.Is(err, boom) {
		t.Errorf("expected encounters error, got %v", err)
	}

	f = newFixture()
	f.scores.upsertErr = boom
	if _, err := f.engine.Compute(ctx, f.profile, scoreDay); !errors.Is(err, boom) {
		t.Errorf("expected upsert error, got %v", err)
	}
}

func TestEngine_ConcurrentComputes(t *testing.T) {
	f := newFixture()
	f.bpAt(scoreDay.Add(8*time.Hour), 150, 95)

	const n = 16
	var wg sync.WaitGroup
	results := make([]*Score, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.engine.Compute(context.Background(), f.profile, scoreDay)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("compute %d: %v", i, errs[i])
		}
		if results[i].ID != results[0].ID || results[i].Value != results[0].Value {
			t.Errorf("compute %d diverged: %v", i, results[i].Value)
		}
	}
	if f.scores.count() != 1 {
		t.Errorf("expected one stored score, got %d", f.scores.count())
	}
}

func TestEngine_CancelledWhileLocked(t *testing.T) {
	f := newFixture()
	unlock, err := f.engine.locker.Lock(context.Background(), lock.ScoreKey(f.profile.ID, scoreDay))
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := f.engine.Compute(ctx, f.profile, scoreDay); !errors.Is(err, lock.ErrNotAcquired) {
		t.Errorf("expected ErrNotAcquired, got %v", err)
	}
}

func TestEngine_DayWindowUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	f := newFixture()
	f.engine = NewEngine(f.vitals, f.encounters, f.scores, nil,
		EngineConfig{DefaultInitialScore: 50, Location: loc}, zerolog.Nop())

	// 23:00 UTC on the 13th is 04:30 on the 14th in IST.
	f.bpAt(time.Date(2026, 10, 13, 23, 0, 0, 0, time.UTC), 130, 85)

	snap, err := f.engine.Observe(context.Background(), f.profile, scoreDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Vitals) != 1 {
		t.Errorf("expected reading inside the local day, got %d", len(snap.Vitals))
	}
	if f.engine.Config().TrendWindowDays != DefaultTrendWindowDays {
		t.Errorf("expected default trend window, got %d", f.engine.Config().TrendWindowDays)
	}
	if got := snap.DayEnd.Sub(snap.TrendStart); got != 8*24*time.Hour {
		t.Errorf("expected 8 day trend span, got %v", got)
	}
}
