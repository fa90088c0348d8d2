package security

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"k8s.io/klog/v2"
)

// Recorder receives every logged event, e.g. to count it in metrics
type Recorder interface {
	RecordAuditEvent(eventType, outcome string)
}

// Logger provides centralized audit event logging
type Logger struct {
	recorder Recorder
}

// NewLogger creates a new audit logger. recorder may be nil.
func NewLogger(recorder Recorder) *Logger {
	return &Logger{
		recorder: recorder,
	}
}

// severityMapping defines how a severity level maps to klog behavior
type severityMapping struct {
	verbosity klog.Level
	logFunc   func(args ...interface{})
}

// severityMap maps EventSeverity to klog verbosity and logging function
var severityMap = map[EventSeverity]severityMapping{
	SeverityInfo:     {verbosity: 2, logFunc: func(args ...interface{}) { klog.V(2).Info(args...) }},
	SeverityWarning:  {verbosity: 1, logFunc: klog.Warning},
	SeverityError:    {verbosity: 0, logFunc: klog.Error},
	SeverityCritical: {verbosity: 0, logFunc: klog.Error},
}

// LogEvent logs an audit event with structured logging
func (l *Logger) LogEvent(event *AuditEvent) {
	if l.recorder != nil {
		l.recorder.RecordAuditEvent(string(event.EventType), string(event.Outcome))
	}

	// Unknown severities log as info
	mapping, ok := severityMap[event.Severity]
	if !ok {
		mapping = severityMap[SeverityInfo]
	}
	mapping.logFunc(l.formatLogMessage(event))

	// Critical events are also logged as JSON for easy parsing
	if event.Severity == SeverityCritical {
		if jsonBytes, err := json.Marshal(event); err == nil {
			klog.Errorf("CRITICAL_AUDIT_EVENT: %s", string(jsonBytes))
		}
	}
}

// formatLogMessage formats an audit event as a structured log message
func (l *Logger) formatLogMessage(event *AuditEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[AUDIT] category=%s type=%s severity=%s outcome=%s msg=%q",
		event.Category, event.EventType, event.Severity, event.Outcome, event.Message)

	if event.UID != "" {
		fmt.Fprintf(&b, " uid=%s", event.UID)
	}
	if event.TablePath != "" {
		fmt.Fprintf(&b, " table_path=%s", event.TablePath)
	}
	if event.BackupPath != "" {
		fmt.Fprintf(&b, " backup_path=%s", event.BackupPath)
	}
	if event.DevicePath != "" {
		fmt.Fprintf(&b, " device_path=%s", event.DevicePath)
	}
	if event.Mountpoint != "" {
		fmt.Fprintf(&b, " mountpoint=%q", event.Mountpoint)
	}
	if event.Entry != "" {
		fmt.Fprintf(&b, " entry=%q", event.Entry)
	}
	if event.Duration > 0 {
		fmt.Fprintf(&b, " duration_ms=%d", event.Duration.Milliseconds())
	}
	if event.Error != "" {
		fmt.Fprintf(&b, " error=%q", event.Error)
	}

	keys := make([]string, 0, len(event.Details))
	for key := range event.Details {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%q", key, event.Details[key])
	}

	fmt.Fprintf(&b, " timestamp=%s", event.Timestamp.Format("2006-01-02T15:04:05.000Z"))
	return b.String()
}

// OperationLogConfig defines the configuration for a logged table edit step
type OperationLogConfig struct {
	Category    EventCategory
	SuccessType EventType
	FailureType EventType
	SuccessSev  EventSeverity
	FailureSev  EventSeverity
	SuccessMsg  string
	FailureMsg  string
}

// operationConfigs defines the logging configuration for the table edit steps
var operationConfigs = map[string]OperationLogConfig{
	"Backup": {Category: CategoryConfigChange, SuccessType: EventBackupCreated, FailureType: EventBackupFailed, SuccessSev: SeverityInfo, FailureSev: SeverityError, SuccessMsg: "Table backed up", FailureMsg: "Table backup failed, table left untouched"},
	"Append": {Category: CategoryConfigChange, SuccessType: EventEntryAppended, FailureType: EventAppendFailed, SuccessSev: SeverityInfo, FailureSev: SeverityCritical, SuccessMsg: "Entry appended", FailureMsg: "Append failed, restore the table from its backup"},
}

// LogOperation logs a table edit step using the table-driven configuration
func (l *Logger) LogOperation(config OperationLogConfig, outcome EventOutcome, build func(*AuditEvent)) {
	eventType, severity, message := config.SuccessType, config.SuccessSev, config.SuccessMsg
	if outcome != OutcomeSuccess {
		eventType, severity, message = config.FailureType, config.FailureSev, config.FailureMsg
	}

	event := NewAuditEvent(eventType, config.Category, severity, message).WithOutcome(outcome)
	if build != nil {
		build(event)
	}
	l.LogEvent(event)
}

func outcomeOf(err error) EventOutcome {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// LogBackup logs the result of copying the table to its backup
func (l *Logger) LogBackup(tablePath, backupPath string, err error, duration time.Duration) {
	l.LogOperation(operationConfigs["Backup"], outcomeOf(err), func(e *AuditEvent) {
		e.WithTable(tablePath, backupPath).WithDuration(duration).WithError(err)
	})
}

// LogAppend logs the result of appending line to the table
func (l *Logger) LogAppend(tablePath, backupPath, line string, err error, duration time.Duration) {
	l.LogOperation(operationConfigs["Append"], outcomeOf(err), func(e *AuditEvent) {
		e.WithTable(tablePath, backupPath).WithEntry(line).WithDuration(duration).WithError(err)
	})
}

// LogPrivilegeDenied logs a run without administrator permissions
func (l *Logger) LogPrivilegeDenied(uid int) {
	event := NewAuditEvent(
		EventPrivilegeDenied,
		CategoryAuthorization,
		SeverityWarning,
		"Administrator permissions required",
	).WithUID(uid).
		WithOutcome(OutcomeDenied)
	l.LogEvent(event)
}

// LogConfigMissing logs a run against a table that does not exist
func (l *Logger) LogConfigMissing(tablePath string, err error) {
	event := NewAuditEvent(
		EventConfigMissing,
		CategoryConfigChange,
		SeverityError,
		"Filesystem table not found",
	).WithTable(tablePath, "").
		WithError(err).
		WithOutcome(OutcomeFailure)
	l.LogEvent(event)
}

// LogMountpointRejected logs a mountpoint that failed validation
func (l *Logger) LogMountpointRejected(path string, err error) {
	event := NewAuditEvent(
		EventMountpointRejected,
		CategoryValidation,
		SeverityWarning,
		"Mountpoint rejected",
	).WithVolume("", path).
		WithError(err).
		WithOutcome(OutcomeDenied)
	l.LogEvent(event)
}

// LogDuplicate logs an existing table line that overlaps the new entry
func (l *Logger) LogDuplicate(line, conflict string) {
	event := NewAuditEvent(
		EventDuplicateWarning,
		CategoryValidation,
		SeverityWarning,
		"Entry overlaps an existing table line",
	).WithEntry(line).
		WithDetail("conflict", conflict).
		WithOutcome(OutcomeUnknown)
	l.LogEvent(event)
}

// LogOperatorDecision logs the answer to the final confirmation
func (l *Logger) LogOperatorDecision(devicePath, mountpoint, line string, confirmed bool) {
	eventType, message := EventOperatorDeclined, "Operator declined the entry"
	if confirmed {
		eventType, message = EventOperatorConfirmed, "Operator confirmed the entry"
	}

	event := NewAuditEvent(eventType, CategoryOperatorDecision, SeverityInfo, message).
		WithVolume(devicePath, mountpoint).
		WithEntry(line).
		WithOutcome(OutcomeSuccess)
	l.LogEvent(event)
}
