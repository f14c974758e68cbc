package domain

import "context"

// Severity grades a user-facing notice.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is a short user-facing message.
type Notice struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Notifier is the sink for user-facing notices.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Success builds a success notice.
func Success(msg string) Notice { return Notice{Message: msg, Severity: SeveritySuccess} }

// Warning builds a warning notice.
func Warning(msg string) Notice { return Notice{Message: msg, Severity: SeverityWarning} }

// Failure builds an error notice.
func Failure(msg string) Notice { return Notice{Message: msg, Severity: SeverityError} }
