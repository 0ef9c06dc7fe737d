// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/goccy/go-json"
)

// EmailConfig configures the SMTP channel.
type EmailConfig struct {
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Username string   `json:"username"`
	Password string   `json:"-"`
	From     string   `json:"from"`
	To       []string `json:"to"`

	// StartTLS upgrades the connection before authenticating.
	StartTLS bool `json:"starttls"`
}

// EmailChannel delivers alerts over SMTP.
type EmailChannel struct {
	cfg    EmailConfig
	dialer net.Dialer
	tls    *tls.Config
}

// NewEmailChannel creates an SMTP channel.
func NewEmailChannel(cfg EmailConfig) (*EmailChannel, error) {
	if cfg.Host == "" {
		return nil, errors.New("email channel: host is required")
	}
	if cfg.From == "" || len(cfg.To) == 0 {
		return nil, errors.New("email channel: from and at least one recipient are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &EmailChannel{
		cfg: cfg,
		tls: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
	}, nil
}

// Name returns the channel name.
func (c *EmailChannel) Name() string {
	return "email"
}

// Send delivers the alert to every configured recipient.
func (c *EmailChannel) Send(ctx context.Context, alert *Alert) error {
	msg, err := buildEmailMessage(c.cfg.From, c.cfg.To, alert)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client := smtp.NewClient(conn)
	defer client.Close()

	if err := client.Hello("localhost"); err != nil {
		return fmt.Errorf("SMTP hello: %w", err)
	}
	if c.cfg.StartTLS {
		if err := client.StartTLS(c.tls); err != nil {
			return fmt.Errorf("SMTP starttls: %w", err)
		}
	}
	if c.cfg.Username != "" {
		if err := client.Auth(sasl.NewPlainClient("", c.cfg.Username, c.cfg.Password)); err != nil {
			return fmt.Errorf("SMTP auth: %w", err)
		}
	}
	if err := client.SendMail(c.cfg.From, c.cfg.To, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("SMTP send: %w", err)
	}
	return client.Quit()
}

// buildEmailMessage renders a plain-text RFC 5322 message for alert.
func buildEmailMessage(from string, to []string, alert *Alert) ([]byte, error) {
	details, err := json.MarshalIndent(alert.Details, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alert details: %w", err)
	}

	subject := fmt.Sprintf("[%s] %s", strings.ToUpper(string(alert.Severity)), alert.Title)

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", alert.Timestamp.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "%s\r\n\r\n", alert.Message)
	fmt.Fprintf(&b, "Alert ID:  %s\r\n", alert.ID)
	fmt.Fprintf(&b, "Type:      %s\r\n", alert.Type)
	fmt.Fprintf(&b, "Severity:  %s\r\n", alert.Severity)
	fmt.Fprintf(&b, "Source IP: %s\r\n", alert.SourceIP)
	if alert.UserID != "" {
		fmt.Fprintf(&b, "User:      %s\r\n", alert.UserID)
	}
	fmt.Fprintf(&b, "Time:      %s\r\n\r\n", alert.Timestamp.UTC().Format(time.RFC3339))
	b.WriteString("Details:\r\n")
	b.WriteString(strings.ReplaceAll(string(details), "\n", "\r\n"))
	b.WriteString("\r\n")

	return b.Bytes(), nil
}
