package security

import (
	"strconv"
	"time"
)

// EventCategory represents the category of an audit event
type EventCategory string

const (
	// CategoryAuthorization represents privilege checks
	CategoryAuthorization EventCategory = "authorization"

	// CategoryConfigChange represents edits to the filesystem table
	CategoryConfigChange EventCategory = "config_change"

	// CategoryValidation represents rejected operator input
	CategoryValidation EventCategory = "validation"

	// CategoryOperatorDecision represents answers to confirmation prompts
	CategoryOperatorDecision EventCategory = "operator_decision"
)

// EventSeverity represents the severity level of an audit event
type EventSeverity string

const (
	// SeverityInfo represents informational events
	SeverityInfo EventSeverity = "info"

	// SeverityWarning represents warning events
	SeverityWarning EventSeverity = "warning"

	// SeverityError represents error events
	SeverityError EventSeverity = "error"

	// SeverityCritical represents events that need operator action, such as a
	// half-written table
	SeverityCritical EventSeverity = "critical"
)

// EventOutcome represents the outcome of an audit event
type EventOutcome string

const (
	// OutcomeSuccess indicates the operation succeeded
	OutcomeSuccess EventOutcome = "success"

	// OutcomeFailure indicates the operation failed
	OutcomeFailure EventOutcome = "failure"

	// OutcomeDenied indicates the operation was denied
	OutcomeDenied EventOutcome = "denied"

	// OutcomeUnknown indicates the outcome is unknown
	OutcomeUnknown EventOutcome = "unknown"
)

// EventType represents specific types of audit events
type EventType string

const (
	// Authorization events
	EventPrivilegeDenied EventType = "privilege_denied"

	// Table edit events
	EventBackupCreated EventType = "backup_created"
	EventBackupFailed  EventType = "backup_failed"
	EventEntryAppended EventType = "entry_appended"
	EventAppendFailed  EventType = "append_failed"
	EventConfigMissing EventType = "config_missing"

	// Validation events
	EventMountpointRejected EventType = "mountpoint_rejected"
	EventDuplicateWarning   EventType = "duplicate_warning"

	// Operator decisions
	EventOperatorConfirmed EventType = "operator_confirmed"
	EventOperatorDeclined  EventType = "operator_declined"
)

// AuditEvent represents one security-relevant step of a table edit
type AuditEvent struct {
	// Core event fields
	Timestamp time.Time     `json:"timestamp"`
	EventType EventType     `json:"event_type"`
	Category  EventCategory `json:"category"`
	Severity  EventSeverity `json:"severity"`
	Outcome   EventOutcome  `json:"outcome"`
	Message   string        `json:"message"`

	// Identity fields
	UID string `json:"uid,omitempty"`

	// Resource fields
	TablePath  string `json:"table_path,omitempty"`
	BackupPath string `json:"backup_path,omitempty"`
	DevicePath string `json:"device_path,omitempty"`
	Mountpoint string `json:"mountpoint,omitempty"`
	Entry      string `json:"entry,omitempty"`

	// Operation details
	Duration time.Duration     `json:"duration_ms,omitempty"`
	Error    string            `json:"error,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// NewAuditEvent creates a new audit event with timestamp
func NewAuditEvent(eventType EventType, category EventCategory, severity EventSeverity, message string) *AuditEvent {
	return &AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Category:  category,
		Severity:  severity,
		Message:   message,
		Details:   make(map[string]string),
	}
}

// WithOutcome sets the outcome for the event
func (e *AuditEvent) WithOutcome(outcome EventOutcome) *AuditEvent {
	e.Outcome = outcome
	return e
}

// WithUID sets the effective user id of the caller
func (e *AuditEvent) WithUID(uid int) *AuditEvent {
	e.UID = strconv.Itoa(uid)
	return e
}

// WithTable sets the table and backup locations
func (e *AuditEvent) WithTable(tablePath, backupPath string) *AuditEvent {
	e.TablePath = tablePath
	e.BackupPath = backupPath
	return e
}

// WithVolume sets the device and mountpoint the entry refers to
func (e *AuditEvent) WithVolume(devicePath, mountpoint string) *AuditEvent {
	e.DevicePath = devicePath
	e.Mountpoint = mountpoint
	return e
}

// WithEntry sets the rendered table line
func (e *AuditEvent) WithEntry(line string) *AuditEvent {
	e.Entry = line
	return e
}

// WithDuration sets how long the step took
func (e *AuditEvent) WithDuration(d time.Duration) *AuditEvent {
	e.Duration = d
	return e
}

// WithError sets error information
func (e *AuditEvent) WithError(err error) *AuditEvent {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDetail adds a custom detail field
func (e *AuditEvent) WithDetail(key, value string) *AuditEvent {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}
