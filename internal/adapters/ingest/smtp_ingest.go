package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/triage"
)

// SMTPIngest runs an SMTP content filter in front of the triage pipeline.
// Each accepted message is triaged, annotated with decision headers and
// handed back to the upstream MTA.
type SMTPIngest struct {
	service *triage.TriageService
	logger  *zap.Logger
	cfg     config.ServerConfig
	server  *smtp.Server
}

// NewSMTPIngest creates a new SMTP ingestion adapter
func NewSMTPIngest(service *triage.TriageService, logger *zap.Logger, cfg config.ServerConfig) *SMTPIngest {
	return &SMTPIngest{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
}

// Start starts the SMTP server
func (f *SMTPIngest) Start() error {
	f.server = smtp.NewServer(&smtpBackend{ingest: f})

	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP ingestion starting", zap.String("address", f.cfg.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (f *SMTPIngest) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail triages a single record. This is mainly used for testing or
// direct API calls.
func (f *SMTPIngest) ProcessEmail(ctx context.Context, record *core.EmailRecord) (*core.QueueItem, error) {
	item := f.service.TriageOne(ctx, *record)
	return &item, nil
}

// forwardUpstream sends the annotated email to the upstream MTA
func (f *SMTPIngest) forwardUpstream(sender string, recipients []string, emailData []byte) error {
	upstreamAddr := fmt.Sprintf("%s:%d", f.cfg.UpstreamAddress, f.cfg.UpstreamPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", upstreamAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to upstream: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	ingest *SMTPIngest
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		ingest:     b.ingest,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	ingest     *SMTPIngest
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed here)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data triages the incoming message and forwards it annotated with the
// decision headers. A blocked decision rejects the message at the SMTP
// level when configured to do so.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.ingest.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.ingest.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	record, err := recordFromMessage(msg, s.sender, time.Now())
	if err != nil {
		s.ingest.logger.Error("Failed to normalize email", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	item := s.ingest.service.TriageOne(ctx, *record)

	if item.Decision == core.DecisionBlocked && s.ingest.cfg.RejectBlocked {
		s.ingest.logger.Info("Rejecting blocked email",
			zap.String("from", record.Sender),
			zap.String("message_id", record.MessageID),
			zap.Int("score", item.Score.Score))
		return fmt.Errorf("550 Rejected by triage guardrails")
	}

	var annotated bytes.Buffer
	fmt.Fprintf(&annotated, "%s: %d\r\n", s.ingest.cfg.ScoreHeader, item.Score.Score)
	fmt.Fprintf(&annotated, "%s: %s\r\n", s.ingest.cfg.CategoryHeader, item.Category)
	fmt.Fprintf(&annotated, "%s: %s\r\n", s.ingest.cfg.DecisionHeader, item.Decision)
	for key, values := range msg.Header {
		for _, value := range values {
			fmt.Fprintf(&annotated, "%s: %s\r\n", key, value)
		}
	}
	fmt.Fprintf(&annotated, "\r\n")
	annotated.Write(rawBody(rawData, msg))

	if s.ingest.cfg.UpstreamEnabled {
		if err := s.ingest.forwardUpstream(s.sender, s.recipients, annotated.Bytes()); err != nil {
			s.ingest.logger.Error("Failed to forward email upstream",
				zap.Error(err),
				zap.String("sender", record.Sender))
			return err
		}
	} else {
		s.ingest.logger.Warn("Upstream forwarding disabled, annotated message dropped")
	}

	s.ingest.logger.Info("Processed email",
		zap.String("from", record.Sender),
		zap.String("message_id", record.MessageID),
		zap.Int("score", item.Score.Score),
		zap.String("category", string(item.Category)),
		zap.String("decision", string(item.Decision)))

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}

// rawBody returns the original body bytes, preserving MIME parts and
// attachments that the parsed message body would re-encode.
func rawBody(rawData []byte, msg *mail.Message) []byte {
	if i := bytes.Index(rawData, []byte("\r\n\r\n")); i != -1 {
		return rawData[i+4:]
	}
	if i := bytes.Index(rawData, []byte("\n\n")); i != -1 {
		return rawData[i+2:]
	}
	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil
	}
	return bodyBytes
}
