package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tallerhub/docpipe/constants"
)

// VehicleInfo is a vehicle as described in the request text.
type VehicleInfo struct {
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
	Plate string `json:"plate,omitempty"`
}

func (v VehicleInfo) Empty() bool { return v.Make == "" && v.Model == "" && v.Plate == "" }

// DraftAppointment is the structured payload salvaged from a conversational
// appointment request.
type DraftAppointment struct {
	CustomerName string      `json:"customer"`
	CustomerID   string      `json:"customer_id,omitempty"`
	Vehicle      VehicleInfo `json:"vehicle"`
	VehicleID    string      `json:"vehicle_id,omitempty"`

	Date        string  `json:"date,omitempty"` // YYYY-MM-DD
	Time        string  `json:"time,omitempty"` // HH:MM, 24h
	Service     string  `json:"service,omitempty"`
	Problem     string  `json:"problem,omitempty"`
	ServiceType string  `json:"service_type,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	Duration    int     `json:"duration_minutes,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`

	MissingFields []string `json:"missing_fields"`
	Suggestion    string   `json:"suggestion,omitempty"`
	FollowUp      string   `json:"follow_up_question,omitempty"`
}

// DecodeDraftAppointment unmarshals a salvaged payload into the draft stage.
func DecodeDraftAppointment(raw json.RawMessage) (*DraftAppointment, error) {
	var d DraftAppointment
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode draft appointment: %w", err)
	}
	return &d, nil
}

// StructurallyEmpty reports whether the draft names neither a customer nor a
// vehicle nor a service.
func (d *DraftAppointment) StructurallyEmpty() bool {
	return strings.TrimSpace(d.CustomerName) == "" &&
		d.Vehicle.Empty() &&
		strings.TrimSpace(d.Service) == "" &&
		strings.TrimSpace(d.Problem) == ""
}

// Appointment is the resolved appointment ready for scheduling review.
type Appointment struct {
	Customer    EntityRef   `json:"customer_ref"`
	NewCustomer bool        `json:"new_customer"`
	Vehicle     EntityRef   `json:"vehicle_ref"`
	VehicleInfo VehicleInfo `json:"vehicle"`
	NewVehicle  bool        `json:"new_vehicle"`

	Date        string                `json:"date,omitempty"`
	Time        string                `json:"time,omitempty"`
	Service     string                `json:"service,omitempty"`
	Problem     string                `json:"problem,omitempty"`
	ServiceType constants.ServiceType `json:"service_type"`
	Priority    constants.Priority    `json:"priority"`
	Duration    int                   `json:"duration_minutes"`

	MissingFields []string `json:"missing_fields"`
	Suggestion    string   `json:"suggestion,omitempty"`
	FollowUp      string   `json:"follow_up_question,omitempty"`
	Confidence    float64  `json:"confidence,omitempty"`
}
