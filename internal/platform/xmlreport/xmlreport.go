// Package xmlreport parses the XML report documents hospitals submit:
// emergency state reports, consultation waiting reports and surgery
// waiting-list reports. Parsing stops at document shape and header
// completeness; reference resolution and per-item semantics belong to the
// ingestion normalizer.
package xmlreport

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Timestamp layouts accepted in submitted documents.
var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// ParseTime parses a submitted timestamp in any accepted layout, in UTC when
// the document carries no offset.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Pair is one triage color's metrics as submitted.
type Pair struct {
	Time   int `xml:"Time"`
	Length int `xml:"Length"`
}

// TriageBlock is the five-color block of one queue tier.
type TriageBlock struct {
	Red    Pair `xml:"Red"`
	Orange Pair `xml:"Orange"`
	Yellow Pair `xml:"Yellow"`
	Green  Pair `xml:"Green"`
	Blue   Pair `xml:"Blue"`
}

// EmergencyReport is a RelatorioUrgencia document.
type EmergencyReport struct {
	XMLName xml.Name        `xml:"RelatorioUrgencia"`
	Header  EmergencyHeader `xml:"Cabecalho"`
	List    struct {
		Items []EmergencyEntry `xml:"Urgencia"`
	} `xml:"ListaUrgencias"`
}

type EmergencyHeader struct {
	HospitalID          int    `xml:"HospitalId" validate:"required"`
	HospitalName        string `xml:"HospitalName" validate:"required"`
	HospitalAddress     string `xml:"HospitalAddress"`
	SubmissionTimestamp string `xml:"SubmissionTimestamp" validate:"required"`
}

type EmergencyEntry struct {
	Type struct {
		Code        string `xml:"Code"`
		Description string `xml:"Description"`
	} `xml:"EmergencyType"`
	Status              string      `xml:"EmergencyStatus"`
	LastUpdate          string      `xml:"LastUpdate"`
	ExtractionTimestamp string      `xml:"ExtractionTimestamp"`
	Triage              TriageBlock `xml:"Triage"`
	Observation         TriageBlock `xml:"Observation"`
}

// PeriodHeader is the Cabecalho of the monthly consultation and surgery
// reports.
type PeriodHeader struct {
	HospitalID   int    `xml:"HospitalID" validate:"required"`
	HospitalName string `xml:"HospitalName" validate:"required"`
	Period       struct {
		Year  int    `xml:"Ano" validate:"required"`
		Month string `xml:"Mes" validate:"required"`
	} `xml:"Periodo"`
}

// ConsultationReport is a RelatorioConsultas document.
type ConsultationReport struct {
	XMLName xml.Name     `xml:"RelatorioConsultas"`
	Header  PeriodHeader `xml:"Cabecalho"`
	List    struct {
		Items []ConsultationEntry `xml:"Consulta"`
	} `xml:"ListaConsultas"`
}

type ConsultationEntry struct {
	ServiceKey int `xml:"ServiceSK"`
	Day        int `xml:"Day"`
	Wait       struct {
		Normal       float64 `xml:"Normal"`
		Priority     float64 `xml:"Prioritario"`
		HighPriority float64 `xml:"MuitoPrioritario"`
	} `xml:"AverageWaitingTime"`
	NumberOfPeople      int    `xml:"NumberOfPeople"`
	PriorityDescription string `xml:"PriorityDescription"`
	Speciality          string `xml:"Speciality"`
}

// SurgeryReport is a RelatorioCirurgias document.
type SurgeryReport struct {
	XMLName xml.Name     `xml:"RelatorioCirurgias"`
	Header  PeriodHeader `xml:"Cabecalho"`
	List    struct {
		Items []SurgeryEntry `xml:"Cirurgia"`
	} `xml:"ListaCirurgias"`
}

type SurgeryEntry struct {
	ServiceKey          int     `xml:"ServiceSK"`
	WaitingListType     string  `xml:"WaitingListType"`
	AverageWaitingTime  float64 `xml:"AverageWaitingTime"`
	Day                 int     `xml:"Day"`
	NumberOfPeople      int     `xml:"NumberOfPeople"`
	PriorityDescription string  `xml:"PriorityDescription"`
	Speciality          string  `xml:"Speciality"`
}

func ParseEmergency(data []byte) (*EmergencyReport, error) {
	var report EmergencyReport
	if err := parse(data, &report, &report.Header); err != nil {
		return nil, err
	}
	return &report, nil
}

func ParseConsultation(data []byte) (*ConsultationReport, error) {
	var report ConsultationReport
	if err := parse(data, &report, &report.Header); err != nil {
		return nil, err
	}
	return &report, nil
}

func ParseSurgery(data []byte) (*SurgeryReport, error) {
	var report SurgeryReport
	if err := parse(data, &report, &report.Header); err != nil {
		return nil, err
	}
	return &report, nil
}

func parse(data []byte, doc interface{}, header interface{}) error {
	if err := xml.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("malformed XML document: %w", err)
	}
	if err := validate.Struct(header); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			missing := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				missing = append(missing, fe.Field())
			}
			return fmt.Errorf("incomplete report header, missing: %v", missing)
		}
		return fmt.Errorf("invalid report header: %w", err)
	}
	return nil
}
