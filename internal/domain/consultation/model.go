package consultation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one first-consultation waiting fact for a hospital service on a
// given day, with the average wait broken down by booking priority.
// (hospital, service, year, month, day) is the natural identity.
type Record struct {
	ID               uuid.UUID `json:"id"`
	HospitalID       int       `json:"hospitalId"`
	HospitalName     string    `json:"hospitalName"`
	ServiceKey       int       `json:"serviceKey"`
	WaitNormal       float64   `json:"waitNormal"`
	WaitPriority     float64   `json:"waitPriority"`
	WaitHighPriority float64   `json:"waitHighPriority"`
	Day              int       `json:"day"`
	Week             int       `json:"week"`
	Quarter          int       `json:"quarter"`
	Month            string    `json:"month"` // free text, submission language
	Year             int       `json:"year"`
	NumberOfPeople   int       `json:"numberOfPeople"`

	PriorityDescription string `json:"priorityDescription,omitempty"`
	Speciality          string `json:"speciality,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MeanWait collapses the three priority tiers into one figure.
func (r *Record) MeanWait() float64 {
	return (r.WaitNormal + r.WaitPriority + r.WaitHighPriority) / 3
}

// IsOncological reports whether the record belongs to an oncological
// pathway, matched on the priority text or the speciality name.
func (r *Record) IsOncological() bool {
	return strings.Contains(strings.ToLower(r.PriorityDescription), "oncológica") ||
		strings.Contains(strings.ToLower(r.Speciality), "oncolog")
}
