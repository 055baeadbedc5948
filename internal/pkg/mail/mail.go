package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/config"
)

const defaultResendEndpoint = "https://api.resend.com/emails"

// Message is a single email to send.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender sends emails via SMTP or Resend.
type Sender struct {
	cfg            config.MailConfig
	resendEndpoint string
	client         *http.Client
}

func New(cfg config.MailConfig) *Sender {
	return &Sender{
		cfg:            cfg,
		resendEndpoint: defaultResendEndpoint,
		client:         &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether Send delivers anything.
func (s *Sender) Enabled() bool { return s != nil && s.cfg.Enable }

// Send dispatches an email. Resend is used when an API key is configured,
// otherwise SMTP. A disabled sender drops the message.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if !s.Enabled() {
		return nil
	}
	if len(msg.To) == 0 {
		return errors.New("mail: no recipients")
	}
	if s.cfg.ResendKey != "" {
		return s.sendResend(ctx, msg)
	}
	return s.sendSMTP(msg)
}

func (s *Sender) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.User
}

// sendSMTP sends via net/smtp. It does not honour ctx.
func (s *Sender) sendSMTP(msg Message) error {
	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, port)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	return smtp.SendMail(addr, auth, s.from(), msg.To, s.mime(msg))
}

func (s *Sender) mime(msg Message) []byte {
	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&body, "From: %s\r\n", s.from())
	fmt.Fprintf(&body, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&body, "Subject: %s\r\n", msg.Subject)
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	if s.cfg.ReplyTo != "" {
		fmt.Fprintf(&body, "Reply-To: %s\r\n", s.cfg.ReplyTo)
	}
	body.WriteString("\r\n")
	body.WriteString(msg.HTML)
	return body.Bytes()
}

// sendResend sends via the Resend HTTP API.
func (s *Sender) sendResend(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(map[string]interface{}{
		"from":    s.from(),
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ResendKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("resend error %d: %s", resp.StatusCode, errResp.Message)
	}
	return nil
}

const passwordResetTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">Reset your password</h2>
  <p>We received a request to reset the password for {{.Email}}.</p>
  <p style="margin-top:24px">
    <a href="{{.Link}}" style="background:#0ea5e9;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Choose a new password</a>
  </p>
  <p style="color:#999;font-size:12px">If you did not ask for this, ignore this email.</p>
</div>
</body>
</html>`

var passwordReset = template.Must(template.New("password_reset").Parse(passwordResetTpl))

// PasswordReset renders the reset email. The token is appended to resetURL.
func PasswordReset(email, resetURL, token string) (Message, error) {
	var html bytes.Buffer
	data := struct{ Email, Link string }{Email: email, Link: resetURL + token}
	if err := passwordReset.Execute(&html, data); err != nil {
		return Message{}, err
	}
	return Message{To: []string{email}, Subject: "Password reset", HTML: html.String()}, nil
}
