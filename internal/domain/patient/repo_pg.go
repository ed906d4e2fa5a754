package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vijay-veer/swasthya-sarthi/internal/platform/db"
)

// =========== Profile Repository ===========

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileRepoPG(pool *pgxpool.Pool) ProfileRepository { return &profileRepoPG{pool: pool} }

const profileCols = `id, user_id, has_diabetes, has_hypertension,
	family_history_diabetes, family_history_hypertension, family_history_heart_disease,
	target_systolic_bp_min, target_systolic_bp_max, target_diastolic_bp_min, target_diastolic_bp_max,
	target_fasting_glucose_min, target_fasting_glucose_max, target_post_meal_glucose_min, target_post_meal_glucose_max,
	target_weight_kg, emergency_contact_name, emergency_contact_phone, created_at, updated_at`

func (r *profileRepoPG) scanProfile(row pgx.Row) (*PatientProfile, error) {
	var p PatientProfile
	err := row.Scan(&p.ID, &p.UserID, &p.HasDiabetes, &p.HasHypertension,
		&p.FamilyHistoryDiabetes, &p.FamilyHistoryHypertension, &p.FamilyHistoryHeartDisease,
		&p.TargetSystolicMin, &p.TargetSystolicMax, &p.TargetDiastolicMin, &p.TargetDiastolicMax,
		&p.TargetFastingGlucoseMin, &p.TargetFastingGlucoseMax, &p.TargetPostMealGlucoseMin, &p.TargetPostMealGlucoseMax,
		&p.TargetWeightKg, &p.EmergencyContactName, &p.EmergencyContactPhone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ApplyDefaultTargets()
	return &p, nil
}

func (r *profileRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PatientProfile, error) {
	p, err := r.scanProfile(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+profileCols+` FROM patient_profiles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient profile %s: %w", id, err)
	}
	return p, nil
}

func (r *profileRepoPG) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT id FROM patient_profiles ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list patient profiles: %w", err)
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

const userCols = `id, phone_number, email, first_name, last_name, preferred_language, created_at, updated_at`

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.PhoneNumber, &u.Email, &u.FirstName, &u.LastName, &u.PreferredLanguage, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

// =========== Vital Store ===========

type vitalStorePG struct{ pool *pgxpool.Pool }

func NewVitalStorePG(pool *pgxpool.Pool) VitalStore { return &vitalStorePG{pool: pool} }

const vitalCols = `id, patient_profile_id, user_id, vital_type, systolic_bp, diastolic_bp,
	glucose_value, is_fasting, heart_rate, weight_kg, temperature_celsius, oxygen_saturation,
	reading_timestamp, notes, created_at`

func scanVital(row pgx.Row) (*VitalReading, error) {
	var v VitalReading
	err := row.Scan(&v.ID, &v.PatientProfileID, &v.UserID, &v.VitalType, &v.SystolicBP, &v.DiastolicBP,
		&v.GlucoseValue, &v.IsFasting, &v.HeartRate, &v.WeightKg, &v.TemperatureCelsius, &v.OxygenSaturation,
		&v.ReadingTimestamp, &v.Notes, &v.CreatedAt)
	return &v, err
}

func (s *vitalStorePG) FetchVitals(ctx context.Context, profileID uuid.UUID, start, end time.Time) ([]*VitalReading, error) {
	rows, err := db.Conn(ctx, s.pool).Query(ctx, `SELECT `+vitalCols+` FROM vital_readings
		WHERE patient_profile_id = $1 AND reading_timestamp >= $2 AND reading_timestamp < $3
		ORDER BY reading_timestamp, id`, profileID, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch vitals for %s: %w", profileID, err)
	}
	defer rows.Close()
	var items []*VitalReading
	for rows.Next() {
		v, err := scanVital(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vital reading: %w", err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// =========== Encounter Store ===========

type encounterStorePG struct{ pool *pgxpool.Pool }

func NewEncounterStorePG(pool *pgxpool.Pool) EncounterStore { return &encounterStorePG{pool: pool} }

const encounterCols = `id, user_id, encounter_type, encounter_timestamp, symptoms,
	medication_taken, medication_missed, activity_minutes, diet_tags,
	mood_rating, sleep_hours, stress_level, notes, created_at`

func scanEncounter(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(&e.ID, &e.UserID, &e.EncounterType, &e.EncounterTimestamp, &e.Symptoms,
		&e.MedicationTaken, &e.MedicationMissed, &e.ActivityMinutes, &e.DietTags,
		&e.MoodRating, &e.SleepHours, &e.StressLevel, &e.Notes, &e.CreatedAt)
	return &e, err
}

func (s *encounterStorePG) FetchEncounters(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*Encounter, error) {
	rows, err := db.Conn(ctx, s.pool).Query(ctx, `SELECT `+encounterCols+` FROM encounters
		WHERE user_id = $1 AND encounter_timestamp >= $2 AND encounter_timestamp < $3
		ORDER BY encounter_timestamp, id`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch encounters for %s: %w", userID, err)
	}
	defer rows.Close()
	var items []*Encounter
	for rows.Next() {
		e, err := scanEncounter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
