package auth

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer writes reset tokens to the log instead of sending mail. Used when
// no mail transport is configured.
type LogMailer struct {
	log *logrus.Entry
}

// NewLogMailer creates a log-backed mailer
func NewLogMailer() *LogMailer {
	return &LogMailer{log: logrus.WithField("component", "auth.mailer")}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.log.WithFields(logrus.Fields{
		"email": email,
		"token": token,
	}).Info("password reset requested")
	return nil
}
