// Package notification gửi email cho tài khoản quản trị (email chào mừng kèm link xác minh).
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"bot_admin/config"
	"bot_admin/internal/logger"

	"gopkg.in/gomail.v2"
)

// VerificationEmail là dữ liệu render email chào mừng
type VerificationEmail struct {
	To              string
	FirstName       string
	Token           string
	DefaultPassword string
	ExpiresInDays   int
}

// Mailer gửi email xác minh tài khoản
type Mailer interface {
	SendVerification(ctx context.Context, msg VerificationEmail) error
}

const verificationSubject = "Welcome! Verify Your Account"

var verificationTemplate = template.Must(template.New("verify").Parse(`
<div style="font-family:Arial;padding:20px;background:#f5f5f5;">
  <div style="max-width:600px;margin:auto;background:#fff;border-radius:10px;padding:30px;">
    <h2 style="color:#1E40AF;">Welcome to Our Platform, {{.FirstName}}</h2>
    <p>Your account has been created with a default password <b>"{{.DefaultPassword}}"</b></p>
    <p>Please verify your email and set a new password to activate your account.</p>
    <a href="{{.VerifyURL}}" style="display:inline-block;margin-top:20px;padding:12px 24px;background:#2563EB;color:white;border-radius:6px;text-decoration:none;">Verify &amp; Set Password</a>
    <p style="margin-top:20px;font-size:12px;color:#777;">This link will expire in <b>{{.ExpiresInDays}} days</b>.</p>
  </div>
</div>`))

// RenderVerification render nội dung HTML của email xác minh
func RenderVerification(frontendURL string, msg VerificationEmail) (string, error) {
	firstName := msg.FirstName
	if firstName == "" {
		firstName = "User"
	}
	verifyURL := frontendURL + "?token=" + url.QueryEscape(msg.Token)

	var buf bytes.Buffer
	err := verificationTemplate.Execute(&buf, map[string]any{
		"FirstName":       firstName,
		"DefaultPassword": msg.DefaultPassword,
		"VerifyURL":       template.URL(verifyURL),
		"ExpiresInDays":   msg.ExpiresInDays,
	})
	if err != nil {
		return "", fmt.Errorf("render verification email: %w", err)
	}
	return buf.String(), nil
}

// NewMailer trả về SMTPMailer khi có SMTP_HOST, ngược lại LogMailer
func NewMailer(c *config.Configuration) Mailer {
	if c.SMTP_Host == "" {
		return &LogMailer{FrontendURL: c.FrontendURL}
	}
	return &SMTPMailer{
		dialer:      gomail.NewDialer(c.SMTP_Host, c.SMTP_Port, c.SMTP_Username, c.SMTP_Password),
		from:        c.MailFrom,
		frontendURL: c.FrontendURL,
	}
}

// SMTPMailer gửi email qua SMTP bằng gomail
type SMTPMailer struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

func (m *SMTPMailer) SendVerification(ctx context.Context, msg VerificationEmail) error {
	html, err := RenderVerification(m.frontendURL, msg)
	if err != nil {
		return err
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", verificationSubject)
	mail.SetBody("text/html", html)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("send verification email to %s: %w", msg.To, err)
	}
	logger.WithModule("notification").WithField("to", msg.To).Info("Verification email sent")
	return nil
}

// LogMailer chỉ ghi log, dùng khi chưa cấu hình SMTP
type LogMailer struct {
	FrontendURL string
}

func (m *LogMailer) SendVerification(_ context.Context, msg VerificationEmail) error {
	if _, err := RenderVerification(m.FrontendURL, msg); err != nil {
		return err
	}
	logger.WithModule("notification").WithField("to", msg.To).
		Info("SMTP chưa cấu hình, bỏ qua gửi email xác minh")
	return nil
}
