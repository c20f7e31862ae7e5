package emergency

import (
	"time"

	"github.com/google/uuid"
)

// Emergency status values as they appear in the submitted data.
const (
	StatusOpen   = "Aberta"
	StatusClosed = "Fechada"
)

// Bucket is one triage color's pair of metrics: average waiting time in
// minutes and queue length in patients.
type Bucket struct {
	Time   int `json:"time"`
	Length int `json:"length"`
}

// TriageSet holds the five Manchester triage colors for one queue tier.
type TriageSet struct {
	Red    Bucket `json:"red"`
	Orange Bucket `json:"orange"`
	Yellow Bucket `json:"yellow"`
	Green  Bucket `json:"green"`
	Blue   Bucket `json:"blue"`
}

// TotalLength is the number of patients across all colors.
func (t TriageSet) TotalLength() int {
	return t.Red.Length + t.Orange.Length + t.Yellow.Length + t.Green.Length + t.Blue.Length
}

// WeightedTime is the length-weighted sum of waiting times across colors,
// the numerator of a patient-weighted average wait.
func (t TriageSet) WeightedTime() float64 {
	return float64(t.Red.Time*t.Red.Length +
		t.Orange.Time*t.Orange.Length +
		t.Yellow.Time*t.Yellow.Length +
		t.Green.Time*t.Green.Length +
		t.Blue.Time*t.Blue.Length)
}

// Snapshot is one emergency-department state report: per-color waiting times
// and queue lengths for the triage and observation tiers at a point in time.
// (hospital, type, last_update) is the natural identity; resubmissions
// replace the row.
type Snapshot struct {
	ID              uuid.UUID `json:"id"`
	HospitalID      int       `json:"hospitalId"`
	HospitalName    string    `json:"hospitalName"`
	HospitalAddress string    `json:"hospitalAddress,omitempty"`
	TypeCode        string    `json:"typeCode"`
	TypeDescription string    `json:"typeDescription"`
	Status          string    `json:"status"`
	LastUpdate      time.Time `json:"lastUpdate"`
	SubmittedAt     time.Time `json:"submittedAt"`
	ExtractedAt     time.Time `json:"extractedAt"`
	Triage          TriageSet `json:"triage"`
	Observation     TriageSet `json:"observation"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Snapshot) IsOpen() bool { return s.Status == StatusOpen }
