package constants

// DocumentType selects the extraction variant.
type DocumentType string

const (
	DocumentInvoice     DocumentType = "INVOICE"
	DocumentAppointment DocumentType = "APPOINTMENT"
)

// ServiceType classifies a workshop appointment.
type ServiceType string

const (
	ServiceMaintenance ServiceType = "mantenimiento"
	ServiceRepair      ServiceType = "reparacion"
	ServiceDiagnostic  ServiceType = "diagnostico"
	ServiceBrakes      ServiceType = "revision_frenos"
	ServiceAlignment   ServiceType = "alineacion"
	ServiceDefault     ServiceType = "default"
)

// DefaultDurationMinutes is the estimated slot length per service type.
var DefaultDurationMinutes = map[ServiceType]int{
	ServiceMaintenance: 60,
	ServiceRepair:      480,
	ServiceDiagnostic:  120,
	ServiceBrakes:      90,
	ServiceAlignment:   60,
	ServiceDefault:     60,
}

// KnownServiceType reports whether t is one of the classified service
// types. The catch-all "default" does not count.
func KnownServiceType(t ServiceType) bool {
	switch t {
	case ServiceMaintenance, ServiceRepair, ServiceDiagnostic, ServiceBrakes, ServiceAlignment:
		return true
	}
	return false
}

// Priority is the inferred urgency of an appointment request.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "alta"
	PriorityUrgent Priority = "urgente"
)

// KnownPriority reports whether p is a recognized urgency level.
func KnownPriority(p Priority) bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
