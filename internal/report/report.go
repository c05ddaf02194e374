// Package report turns the pipeline output into the plaintext email the
// job exists to send. It is a thin delivery wrapper: all filtering already
// happened upstream.
package report

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"cinescout/internal/domain"
)

// Options holds the SMTP settings for delivery over implicit TLS.
type Options struct {
	From     string
	To       string
	Host     string
	Port     int
	Username string
	Password string
}

const subject = "New movies in Pathe"

// Format renders the plaintext report body: one "<rating> <movie-url>
// <imdb-url>" line per record.
func Format(records []domain.ResultRecord) string {
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "%.1f %s %s\r\n", r.Rating, r.MovieURL, r.RatingURL)
	}
	return b.String()
}

// Send delivers the report over SMTP with implicit TLS.
func Send(opts Options, records []domain.ResultRecord) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		opts.From, opts.To, subject, Format(records))

	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: opts.Host})
	if err != nil {
		return fmt.Errorf("report: dial %s: %w", addr, err)
	}
	client, err := smtp.NewClient(conn, opts.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("report: smtp handshake: %w", err)
	}
	defer client.Close()

	if opts.Username != "" {
		auth := smtp.PlainAuth("", opts.Username, opts.Password, opts.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("report: auth: %w", err)
		}
	}
	if err := client.Mail(opts.From); err != nil {
		return fmt.Errorf("report: MAIL FROM: %w", err)
	}
	if err := client.Rcpt(opts.To); err != nil {
		return fmt.Errorf("report: RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("report: DATA: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		w.Close()
		return fmt.Errorf("report: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("report: close body: %w", err)
	}
	return client.Quit()
}
