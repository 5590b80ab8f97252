// Package notify delivers outbound registration emails.
//
// Delivery is a side effect of a successful state change. Senders never
// influence the outcome of the operation that triggered them.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// RegistrationMessage confirms a committed registration to the team lead.
type RegistrationMessage struct {
	RegistrationID   string
	HolderID         string
	Email            string
	TeamName         string
	ProblemStatement string
	LockedAt         time.Time
}

// WithdrawalMessage confirms a withdrawn registration.
type WithdrawalMessage struct {
	RegistrationID string
	HolderID       string
	Email          string
	TeamName       string
}

// Sender sends registration lifecycle emails.
type Sender interface {
	SendRegistration(ctx context.Context, msg RegistrationMessage) error
	SendWithdrawal(ctx context.Context, msg WithdrawalMessage) error
}

// NoopSender drops every message.
type NoopSender struct{}

func (NoopSender) SendRegistration(context.Context, RegistrationMessage) error { return nil }
func (NoopSender) SendWithdrawal(context.Context, WithdrawalMessage) error     { return nil }

// LogSender records messages as structured log lines instead of delivering
// them. Used when no mail provider is configured.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func (s LogSender) SendRegistration(ctx context.Context, msg RegistrationMessage) error {
	s.logger().InfoContext(ctx, "notify.registration",
		"registration_id", msg.RegistrationID,
		"holder", msg.HolderID,
		"to", msg.Email,
		"team", msg.TeamName,
		"problem_statement", msg.ProblemStatement,
		"locked_at", msg.LockedAt,
	)
	return nil
}

func (s LogSender) SendWithdrawal(ctx context.Context, msg WithdrawalMessage) error {
	s.logger().InfoContext(ctx, "notify.withdrawal",
		"registration_id", msg.RegistrationID,
		"holder", msg.HolderID,
		"to", msg.Email,
		"team", msg.TeamName,
	)
	return nil
}
