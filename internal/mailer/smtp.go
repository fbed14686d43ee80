package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultSMTPTimeout = 15 * time.Second

// SMTPConfig holds SMTP delivery settings.
type SMTPConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// SMTPTransport sends mail through an SMTP relay, one connection per message.
type SMTPTransport struct {
	cfg    SMTPConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewSMTPTransport creates a new SMTPTransport.
func NewSMTPTransport(cfg SMTPConfig, logger *zap.Logger) *SMTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSMTPTimeout
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTPTransport{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Send composes msg and delivers it. Failures are reported in the result.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) SendResult {
	if msg.To == "" {
		return failed(errors.New("missing recipient address"))
	}

	messageID := newMessageID(t.cfg.FromEmail)
	raw, err := compose(t.cfg.FromName, t.cfg.FromEmail, messageID, t.now(), msg)
	if err != nil {
		return failed(fmt.Errorf("composing message: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	if err := t.deliver(ctx, msg.To, raw); err != nil {
		t.logger.Warn("smtp delivery failed",
			zap.String("to", msg.To),
			zap.String("tag", msg.Tag),
			zap.Error(err),
		)
		return failed(err)
	}

	t.logger.Debug("smtp delivery succeeded",
		zap.String("to", msg.To),
		zap.String("tag", msg.Tag),
		zap.String("message_id", messageID),
	)
	return SendResult{Success: true, MessageID: messageID}
}

func (t *SMTPTransport) deliver(ctx context.Context, to string, raw []byte) error {
	addr := net.JoinHostPort(t.cfg.Host, t.cfg.Port)
	tlsConfig := &tls.Config{ServerName: t.cfg.Host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if t.cfg.Port == "465" {
		dialer := &tls.Dialer{NetDialer: &net.Dialer{}, Config: tlsConfig}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("connecting to SMTP %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("starting SMTP session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok && t.cfg.Port != "465" {
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if t.cfg.Username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("authenticating as %s: %w", t.cfg.Username, err)
			}
		}
	}

	if err := client.Mail(t.cfg.FromEmail); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO %s: %w", to, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message: %w", err)
	}

	return client.Quit()
}

// compose renders msg as a MIME message with text and HTML alternatives.
func compose(fromName, fromEmail, messageID string, date time.Time, msg Message) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{{Name: fromName, Address: fromEmail}})
	h.SetAddressList("To", []*mail.Address{{Name: msg.ToName, Address: msg.To}})
	h.SetSubject(msg.Subject)
	h.SetMessageID(messageID)

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}

	iw, err := mw.CreateInline()
	if err != nil {
		return nil, err
	}
	if msg.Text != "" {
		if err := writePart(iw, "text/plain", msg.Text); err != nil {
			return nil, err
		}
	}
	if msg.HTML != "" {
		if err := writePart(iw, "text/html", msg.HTML); err != nil {
			return nil, err
		}
	}
	if err := iw.Close(); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writePart(iw *mail.InlineWriter, contentType, body string) error {
	var ph mail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	w, err := iw.CreatePart(ph)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func newMessageID(fromEmail string) string {
	domain := "localhost"
	if at := strings.LastIndex(fromEmail, "@"); at >= 0 && at < len(fromEmail)-1 {
		domain = fromEmail[at+1:]
	}
	return uuid.NewString() + "@" + domain
}
