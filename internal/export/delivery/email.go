// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package delivery

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/auditorium/internal/logging"
	"github.com/tomtom215/auditorium/internal/metrics"
)

// SMTPConfig configures the outgoing mail relay.
type SMTPConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"required,gt=0,lte=65535"`
	From     string `koanf:"from" validate:"required,email"`
	FromName string `koanf:"from_name"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	UseTLS   bool   `koanf:"use_tls"`

	// SendsPerMinute paces outgoing mail so a large recipient list cannot
	// trip the relay's own limits. Zero means 30.
	SendsPerMinute int `koanf:"sends_per_minute"`
}

// EmailSender delivers rendered exports as mail attachments. Sends run
// behind a circuit breaker so a dead relay fails fast instead of tying up
// the delivery worker, and a rate limiter paces the per-recipient sends.
type EmailSender struct {
	cfg     SMTPConfig
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[interface{}]
	limiter *rate.Limiter

	// send is swapped in tests.
	send func(ctx context.Context, to string, msg []byte) error
}

// NewEmailSender builds a sender for the given relay.
func NewEmailSender(cfg SMTPConfig) *EmailSender {
	perMinute := cfg.SendsPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}

	s := &EmailSender{
		cfg:     cfg,
		timeout: 30 * time.Second,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
	s.send = s.sendSMTP

	s.breaker = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("smtp circuit breaker state change")
		},
	})
	return s
}

// Send mails the document to every recipient. Recipients are paced by the
// limiter; the first hard failure aborts the remainder so the breaker sees
// consecutive failures, not an alternating pattern.
func (s *EmailSender) Send(ctx context.Context, recipients []string, subject string, doc Document) error {
	msgBase := s.buildMessage(subject, doc)

	for _, to := range recipients {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("delivery: rate limit wait: %w", err)
		}

		msg := append([]byte(fmt.Sprintf("To: %s\r\n", to)), msgBase...)
		_, err := s.breaker.Execute(func() (interface{}, error) {
			return nil, s.send(ctx, to, msg)
		})
		metrics.RecordEmailSend(err)
		if err != nil {
			return fmt.Errorf("delivery: send to %s: %w", to, err)
		}

		logging.Debug().Str("recipient", to).Str("file", doc.Filename).Msg("export mailed")
	}
	return nil
}

// buildMessage assembles the MIME message minus the To header.
func (s *EmailSender) buildMessage(subject string, doc Document) []byte {
	fromName := s.cfg.FromName
	if fromName == "" {
		fromName = "Audit Exports"
	}
	boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", fromName, s.cfg.From))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", boundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(fmt.Sprintf("Attached: %s (%d bytes).\r\n", doc.Filename, len(doc.Data)))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString(fmt.Sprintf("Content-Type: %s\r\n", doc.ContentType))
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n", doc.Filename))
	msg.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(doc.Data)
	for len(encoded) > 76 {
		msg.WriteString(encoded[:76])
		msg.WriteString("\r\n")
		encoded = encoded[76:]
	}
	msg.WriteString(encoded)
	msg.WriteString("\r\n")
	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return []byte(msg.String())
}

// sendSMTP performs one SMTP transaction.
func (s *EmailSender) sendSMTP(ctx context.Context, to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if s.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}

	if s.cfg.User != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("start message: %w", err)
	}
	if _, err := writer.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	// Quit errors after a completed DATA are harmless.
	_ = client.Quit()
	return nil
}
