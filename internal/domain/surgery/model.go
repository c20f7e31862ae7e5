package surgery

import (
	"time"

	"github.com/google/uuid"
)

// Waiting-list types as they appear in the submitted data.
const (
	ListGeneral        = "Geral"
	ListOncological    = "Oncológica"
	ListNonOncological = "Não Oncológica"
)

// Record is one surgery waiting-list fact for a hospital service on a given
// day. (hospital, service, list type, year, month, day) is the natural
// identity: the same service reports each of its waiting lists separately.
type Record struct {
	ID                 uuid.UUID `json:"id"`
	HospitalID         int       `json:"hospitalId"`
	HospitalName       string    `json:"hospitalName"`
	ServiceKey         int       `json:"serviceKey"`
	WaitingListType    string    `json:"waitingListType"`
	AverageWaitingTime float64   `json:"averageWaitingTime"`
	Day                int       `json:"day"`
	Week               int       `json:"week"`
	Quarter            int       `json:"quarter"`
	Month              string    `json:"month"` // free text, submission language
	Year               int       `json:"year"`
	NumberOfPeople     int       `json:"numberOfPeople"`

	PriorityDescription string `json:"priorityDescription,omitempty"`
	Speciality          string `json:"speciality,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
