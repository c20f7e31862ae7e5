package reference

import "time"

// Hospital is a registry entry for a healthcare institution. IDs are the
// natural identifiers from the national registry, not surrogate keys, so
// submitted reports can reference them directly.
type Hospital struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Typology    string   `json:"typology,omitempty"`
	District    string   `json:"district,omitempty"`
	Region      string   `json:"region,omitempty"` // NUTS II region
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasCoordinates reports whether the hospital can participate in geographic
// queries.
func (h *Hospital) HasCoordinates() bool {
	return h.Latitude != nil && h.Longitude != nil
}

// Service is a care service a hospital can report waiting-list facts against,
// keyed by the registry's service key (SK).
type Service struct {
	Key                 int    `json:"key"`
	Name                string `json:"name"`
	Speciality          string `json:"speciality,omitempty"`
	PriorityCode        int    `json:"priorityCode,omitempty"`
	PriorityDescription string `json:"priorityDescription,omitempty"`
	TypeCode            string `json:"typeCode,omitempty"`
	TypeDescription     string `json:"typeDescription,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PriorityCodeFromRaw derives the numeric priority tier from the leading
// digit of the raw priority text as published in the registry extracts:
// 1 normal, 2 prioritized, 3 very prioritized. Unrecognized text maps to 0.
func PriorityCodeFromRaw(raw string) int {
	for _, r := range raw {
		if r >= '1' && r <= '3' {
			return int(r - '0')
		}
		if r != ' ' {
			break
		}
	}
	return 0
}
