package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tallerhub/docpipe/constants"
	"github.com/tallerhub/docpipe/internal/catalog"
	"github.com/tallerhub/docpipe/internal/common"
	"github.com/tallerhub/docpipe/internal/document"
)

var (
	reDate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reTime   = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
	reInDays = regexp.MustCompile(`^en\s+(\d+)\s+d[ií]as?$`)
)

// appointmentStage post-processes a salvaged scheduling payload: field
// validation, relative date handling, customer/vehicle matching against
// the catalog, and service type defaulting.
type appointmentStage struct {
	logger *slog.Logger
	now    func() time.Time
}

func (st *appointmentStage) run(rid string, raw json.RawMessage, snap *catalog.Snapshot) (*document.ReconciledDocument, error) {
	draft, err := document.DecodeDraftAppointment(raw)
	if err != nil {
		return nil, common.NewAppError("INVALID_OUTPUT", "provider output is not a draft appointment", err)
	}
	if draft.StructurallyEmpty() {
		return nil, common.NewAppError("EMPTY_OUTPUT", "provider returned a structurally empty appointment", nil)
	}

	var findings []document.Finding
	if err := document.ValidateAgainstSchema(document.BuildAppointmentJSONSchema(), raw); err != nil {
		st.logger.Warn("pipeline.appointment.schema_violation", "req_id", rid, "error", err)
		findings = append(findings, document.Finding{
			Severity: document.SeverityWarning,
			Message:  fmt.Sprintf("output deviates from expected shape: %v", err),
		})
	}

	appt := st.postProcess(draft, snap)

	confidence := 100
	for _, f := range appt.MissingFields {
		findings = append(findings, document.Finding{
			Severity: document.SeverityWarning,
			Message:  fmt.Sprintf("missing appointment field %q", f),
		})
		confidence -= 5
	}
	if appt.NewCustomer {
		findings = append(findings, document.Finding{
			Severity: document.SeverityInfo,
			Message:  fmt.Sprintf("customer %q not found in catalog, will be created on confirm", appt.Customer.Name),
		})
	}
	if appt.NewVehicle && !appt.VehicleInfo.Empty() {
		findings = append(findings, document.Finding{
			Severity: document.SeverityInfo,
			Message:  "vehicle not found in catalog, will be created on confirm",
		})
	}
	if confidence < 0 {
		confidence = 0
	}
	if len(findings) == 0 {
		findings = append(findings, document.Finding{
			Severity: document.SeverityInfo,
			Message:  "appointment request is complete",
		})
	}

	st.logger.Info("pipeline.appointment.processed",
		"req_id", rid,
		"missing_fields", len(appt.MissingFields),
		"new_customer", appt.NewCustomer,
		"new_vehicle", appt.NewVehicle,
		"confidence", confidence,
	)

	return &document.ReconciledDocument{
		Type:        constants.DocumentAppointment,
		Appointment: appt,
		Report: document.Report{
			Findings:   findings,
			Confidence: confidence,
			IsValid:    true,
		},
		RawOutput: raw,
	}, nil
}

func (st *appointmentStage) postProcess(draft *document.DraftAppointment, snap *catalog.Snapshot) *document.Appointment {
	missing := slices.Clone(draft.MissingFields)
	ensureMissing := func(field string) {
		if !slices.Contains(missing, field) {
			missing = append(missing, field)
		}
	}

	date := strings.TrimSpace(draft.Date)
	if date != "" {
		if resolved, ok := resolveRelativeDate(date, st.now()); ok {
			date = resolved
		}
		if !reDate.MatchString(date) {
			date = ""
		}
	}
	if date == "" {
		ensureMissing("date")
	}

	clock := strings.TrimSpace(draft.Time)
	if clock != "" && !reTime.MatchString(clock) {
		clock = ""
	}
	if clock == "" {
		ensureMissing("time")
	}

	if strings.TrimSpace(draft.CustomerName) == "" {
		ensureMissing("customer")
	}
	if draft.Vehicle.Empty() {
		ensureMissing("vehicle")
	}

	serviceType := constants.ServiceType(strings.TrimSpace(draft.ServiceType))
	if !constants.KnownServiceType(serviceType) {
		serviceType = constants.ServiceDefault
	}
	duration := draft.Duration
	if duration <= 0 {
		duration = constants.DefaultDurationMinutes[serviceType]
	}
	priority := constants.Priority(strings.TrimSpace(draft.Priority))
	if !constants.KnownPriority(priority) {
		priority = constants.PriorityNormal
	}

	appt := &document.Appointment{
		VehicleInfo:   draft.Vehicle,
		Date:          date,
		Time:          clock,
		Service:       draft.Service,
		Problem:       draft.Problem,
		ServiceType:   serviceType,
		Priority:      priority,
		Duration:      duration,
		MissingFields: missing,
		Suggestion:    draft.Suggestion,
		FollowUp:      draft.FollowUp,
		Confidence:    draft.Confidence,
	}

	var customers []catalog.Customer
	var vehicles []catalog.Vehicle
	if snap != nil {
		customers = snap.Customers()
		vehicles = snap.Vehicles()
	}
	if match := catalog.MatchCustomer(draft.CustomerName, customers); match != nil {
		appt.Customer = document.ResolvedRef(match.ID, match.Name, match.NationalID)
	} else {
		appt.Customer = document.UnresolvedRef(draft.CustomerName, "")
		appt.NewCustomer = strings.TrimSpace(draft.CustomerName) != ""
	}
	if match := catalog.MatchVehicle(draft.Vehicle, vehicles); match != nil {
		appt.Vehicle = document.ResolvedRef(match.ID, strings.TrimSpace(match.Make+" "+match.Model), match.Plate)
	} else {
		appt.Vehicle = document.UnresolvedRef(strings.TrimSpace(draft.Vehicle.Make+" "+draft.Vehicle.Model), draft.Vehicle.Plate)
		appt.NewVehicle = !draft.Vehicle.Empty()
	}

	if appt.FollowUp == "" && len(missing) > 0 {
		appt.FollowUp = followUpFor(missing[0])
	}
	return appt
}

// resolveRelativeDate maps common relative day words (English and
// Spanish) and "en N días" spans to concrete dates. Unknown words pass
// through untouched.
func resolveRelativeDate(s string, now time.Time) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if m := reInDays.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return now.AddDate(0, 0, n).Format("2006-01-02"), true
		}
	}
	switch lower {
	case "hoy", "today":
		return now.Format("2006-01-02"), true
	case "mañana", "manana", "tomorrow":
		return now.AddDate(0, 0, 1).Format("2006-01-02"), true
	case "pasado mañana", "pasado manana":
		return now.AddDate(0, 0, 2).Format("2006-01-02"), true
	}
	weekdays := map[string]time.Weekday{
		"lunes": time.Monday, "monday": time.Monday,
		"martes": time.Tuesday, "tuesday": time.Tuesday,
		"miércoles": time.Wednesday, "miercoles": time.Wednesday, "wednesday": time.Wednesday,
		"jueves": time.Thursday, "thursday": time.Thursday,
		"viernes": time.Friday, "friday": time.Friday,
		"sábado": time.Saturday, "sabado": time.Saturday, "saturday": time.Saturday,
		"domingo": time.Sunday, "sunday": time.Sunday,
	}
	if wd, ok := weekdays[lower]; ok {
		days := (int(wd) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return now.AddDate(0, 0, days).Format("2006-01-02"), true
	}
	return s, false
}

func followUpFor(field string) string {
	switch field {
	case "date":
		return "¿Para qué fecha desea agendar la cita?"
	case "time":
		return "¿A qué hora le conviene la cita?"
	case "customer":
		return "¿A nombre de quién agendamos la cita?"
	case "vehicle":
		return "¿Qué vehículo traerá al taller (marca, modelo o placa)?"
	default:
		return "¿Puede darnos más detalles sobre la cita?"
	}
}
