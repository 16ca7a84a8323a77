// Package mailer delivers outbound notification mail over SMTP. Delivery is
// best-effort: callers log failures but never roll back persisted state
// because a notification could not be sent.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"restaurant-booking-api/config"
)

// Send delivers a single message. Swappable so tests can capture mail
// instead of dialing out.
var Send = sendSMTP

func sendSMTP(to, subject, body string) error {
	host := config.GetEnv("MAIL_HOST", "")
	if host == "" {
		return fmt.Errorf("mailer: MAIL_HOST is not configured")
	}
	port := config.GetEnv("MAIL_PORT", "587")
	username := config.GetEnv("MAIL_USERNAME", "")
	password := config.GetEnv("MAIL_PASSWORD", "")
	from := config.GetEnv("MAIL_FROM", "no-reply@tablebooking.app")

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return smtp.SendMail(host+":"+port, auth, from, []string{to}, []byte(msg.String()))
}

// SendManagerApproval notifies an applicant that their partner application
// was approved and a manager account now exists for their email.
func SendManagerApproval(to, name, restaurantName string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your partner application has been approved. "+
			"You can now log in with your registered email and manage <b>%s</b>.</p>",
		name, restaurantName)
	return Send(to, "Your partner application was approved", body)
}

// SendPasswordReset mails a short-lived reset link.
func SendPasswordReset(to, token string) error {
	origin := config.GetEnv("FRONTEND_ORIGIN", "http://localhost:3000")
	body := fmt.Sprintf(
		"<p>We received a request to reset your password.</p>"+
			"<p><a href=\"%s/reset-password?token=%s\">Reset your password</a> "+
			"(link expires in 15 minutes).</p>"+
			"<p>If you did not request this, you can ignore this email.</p>",
		origin, token)
	return Send(to, "Password reset", body)
}
