package patient

import (
	"time"

	"github.com/google/uuid"
)

// VitalType names the measurement carried by a VitalReading.
type VitalType string

const (
	VitalBloodPressure    VitalType = "blood_pressure"
	VitalGlucose          VitalType = "glucose"
	VitalHeartRate        VitalType = "heart_rate"
	VitalWeight           VitalType = "weight"
	VitalTemperature      VitalType = "temperature"
	VitalOxygenSaturation VitalType = "oxygen_saturation"
)

// Valid reports whether t is one of the recorded vital types.
func (t VitalType) Valid() bool {
	switch t {
	case VitalBloodPressure, VitalGlucose, VitalHeartRate, VitalWeight, VitalTemperature, VitalOxygenSaturation:
		return true
	}
	return false
}

// Default target ranges applied when a clinician has not set patient-specific values.
const (
	DefaultTargetSystolicMin        = 120
	DefaultTargetSystolicMax        = 140
	DefaultTargetDiastolicMin       = 80
	DefaultTargetDiastolicMax       = 90
	DefaultTargetFastingGlucoseMin  = 80
	DefaultTargetFastingGlucoseMax  = 130
	DefaultTargetPostMealGlucoseMin = 100
	DefaultTargetPostMealGlucoseMax = 180
)

// User maps to the users table. Only the fields needed to reach the patient
// are carried.
type User struct {
	ID                uuid.UUID `db:"id" json:"id"`
	PhoneNumber       string    `db:"phone_number" json:"phone_number"`
	Email             *string   `db:"email" json:"email,omitempty"`
	FirstName         *string   `db:"first_name" json:"first_name,omitempty"`
	LastName          *string   `db:"last_name" json:"last_name,omitempty"`
	PreferredLanguage string    `db:"preferred_language" json:"preferred_language"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName returns the first name, falling back to the phone number.
func (u *User) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return u.PhoneNumber
}

// PatientProfile maps to the patient_profiles table.
type PatientProfile struct {
	ID                        uuid.UUID `db:"id" json:"id"`
	UserID                    uuid.UUID `db:"user_id" json:"user_id"`
	HasDiabetes               bool      `db:"has_diabetes" json:"has_diabetes"`
	HasHypertension           bool      `db:"has_hypertension" json:"has_hypertension"`
	FamilyHistoryDiabetes     bool      `db:"family_history_diabetes" json:"family_history_diabetes"`
	FamilyHistoryHypertension bool      `db:"family_history_hypertension" json:"family_history_hypertension"`
	FamilyHistoryHeartDisease bool      `db:"family_history_heart_disease" json:"family_history_heart_disease"`
	TargetSystolicMin         int       `db:"target_systolic_bp_min" json:"target_systolic_bp_min"`
	TargetSystolicMax         int       `db:"target_systolic_bp_max" json:"target_systolic_bp_max"`
	TargetDiastolicMin        int       `db:"target_diastolic_bp_min" json:"target_diastolic_bp_min"`
	TargetDiastolicMax        int       `db:"target_diastolic_bp_max" json:"target_diastolic_bp_max"`
	TargetFastingGlucoseMin   int       `db:"target_fasting_glucose_min" json:"target_fasting_glucose_min"`
	TargetFastingGlucoseMax   int       `db:"target_fasting_glucose_max" json:"target_fasting_glucose_max"`
	TargetPostMealGlucoseMin  int       `db:"target_post_meal_glucose_min" json:"target_post_meal_glucose_min"`
	TargetPostMealGlucoseMax  int       `db:"target_post_meal_glucose_max" json:"target_post_meal_glucose_max"`
	TargetWeightKg            *float64  `db:"target_weight_kg" json:"target_weight_kg,omitempty"`
	EmergencyContactName      *string   `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone     *string   `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	CreatedAt                 time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                 time.Time `db:"updated_at" json:"updated_at"`
}

// NewProfile returns a profile for userID with the default target ranges.
func NewProfile(userID uuid.UUID) *PatientProfile {
	p := &PatientProfile{ID: uuid.New(), UserID: userID}
	p.ApplyDefaultTargets()
	return p
}

// ApplyDefaultTargets fills every unset (zero) target bound with its default.
func (p *PatientProfile) ApplyDefaultTargets() {
	setDefault(&p.TargetSystolicMin, DefaultTargetSystolicMin)
	setDefault(&p.TargetSystolicMax, DefaultTargetSystolicMax)
	setDefault(&p.TargetDiastolicMin, DefaultTargetDiastolicMin)
	setDefault(&p.TargetDiastolicMax, DefaultTargetDiastolicMax)
	setDefault(&p.TargetFastingGlucoseMin, DefaultTargetFastingGlucoseMin)
	setDefault(&p.TargetFastingGlucoseMax, DefaultTargetFastingGlucoseMax)
	setDefault(&p.TargetPostMealGlucoseMin, DefaultTargetPostMealGlucoseMin)
	setDefault(&p.TargetPostMealGlucoseMax, DefaultTargetPostMealGlucoseMax)
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// InBPTarget reports whether both pressures fall inside the inclusive target ranges.
func (p *PatientProfile) InBPTarget(systolic, diastolic int) bool {
	return systolic >= p.TargetSystolicMin && systolic <= p.TargetSystolicMax &&
		diastolic >= p.TargetDiastolicMin && diastolic <= p.TargetDiastolicMax
}

// InGlucoseTarget checks glucose against the fasting or post-meal range.
func (p *PatientProfile) InGlucoseTarget(glucose int, fasting bool) bool {
	if fasting {
		return glucose >= p.TargetFastingGlucoseMin && glucose <= p.TargetFastingGlucoseMax
	}
	return glucose >= p.TargetPostMealGlucoseMin && glucose <= p.TargetPostMealGlucoseMax
}

// GlucoseTargetMax returns the upper bound of the range selected by fasting.
func (p *PatientProfile) GlucoseTargetMax(fasting bool) int {
	if fasting {
		return p.TargetFastingGlucoseMax
	}
	return p.TargetPostMealGlucoseMax
}

// VitalReading maps to the vital_readings table. Which value columns are
// set depends on VitalType.
type VitalReading struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	PatientProfileID   uuid.UUID `db:"patient_profile_id" json:"patient_profile_id"`
	UserID             uuid.UUID `db:"user_id" json:"user_id"`
	VitalType          VitalType `db:"vital_type" json:"vital_type"`
	SystolicBP         *int      `db:"systolic_bp" json:"systolic_bp,omitempty"`
	DiastolicBP        *int      `db:"diastolic_bp" json:"diastolic_bp,omitempty"`
	GlucoseValue       *int      `db:"glucose_value" json:"glucose_value,omitempty"`
	IsFasting          *bool     `db:"is_fasting" json:"is_fasting,omitempty"`
	HeartRate          *int      `db:"heart_rate" json:"heart_rate,omitempty"`
	WeightKg           *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
	TemperatureCelsius *float64  `db:"temperature_celsius" json:"temperature_celsius,omitempty"`
	OxygenSaturation   *int      `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`
	ReadingTimestamp   time.Time `db:"reading_timestamp" json:"reading_timestamp"`
	Notes              *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// Fasting treats an unset fasting flag as post-meal.
func (v *VitalReading) Fasting() bool {
	return v.IsFasting != nil && *v.IsFasting
}

// Encounter maps to the encounters table: one daily self-report. The
// medication flags are tri-state; nil means the patient did not log it.
type Encounter struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	UserID             uuid.UUID `db:"user_id" json:"user_id"`
	EncounterType      string    `db:"encounter_type" json:"encounter_type"`
	EncounterTimestamp time.Time `db:"encounter_timestamp" json:"encounter_timestamp"`
	Symptoms           *string   `db:"symptoms" json:"symptoms,omitempty"`
	MedicationTaken    *bool     `db:"medication_taken" json:"medication_taken,omitempty"`
	MedicationMissed   *bool     `db:"medication_missed" json:"medication_missed,omitempty"`
	ActivityMinutes    *int      `db:"activity_minutes" json:"activity_minutes,omitempty"`
	DietTags           []string  `db:"diet_tags" json:"diet_tags,omitempty"`
	MoodRating         *int      `db:"mood_rating" json:"mood_rating,omitempty"`
	SleepHours         *float64  `db:"sleep_hours" json:"sleep_hours,omitempty"`
	StressLevel        *int      `db:"stress_level" json:"stress_level,omitempty"`
	Notes              *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// Missed reports an explicit missed-medication flag.
func (e *Encounter) Missed() bool {
	return e.MedicationMissed != nil && *e.MedicationMissed
}

// Taken reports an explicit medication-taken flag.
func (e *Encounter) Taken() bool {
	return e.MedicationTaken != nil && *e.MedicationTaken
}

// LogsMedication is true when either medication flag was recorded.
func (e *Encounter) LogsMedication() bool {
	return e.MedicationTaken != nil || e.MedicationMissed != nil
}

// Subject is a fully resolved patient: the profile plus the user it belongs to.
type Subject struct {
	Profile *PatientProfile
	User    *User
}
