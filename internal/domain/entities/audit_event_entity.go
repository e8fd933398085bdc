package entities

import (
	"time"

	"github.com/google/uuid"
)

type AuditDecision string

const (
	DecisionAllowed AuditDecision = "allowed"
	DecisionDenied  AuditDecision = "denied"
)

// AuditEvent records one access-control decision. It is transport agnostic so
// queues and journals can carry it as JSON.
type AuditEvent struct {
	ID            uuid.UUID     `json:"id"`
	Action        string        `json:"action"`
	CallerAddress string        `json:"caller_address"`
	CallerID      int64         `json:"caller_id,omitempty"`
	CallerRole    Role          `json:"caller_role,omitempty"`
	PatientID     int64         `json:"patient_id,omitempty"`
	DoctorID      int64         `json:"doctor_id,omitempty"`
	RecordIndex   *int          `json:"record_index,omitempty"`
	Decision      AuditDecision `json:"decision"`
	Reason        string        `json:"reason,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}
