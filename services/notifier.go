package services

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

// Notifier delivers an alert to one user. Dispatch is fire-and-forget:
// callers log failures and keep going, they never roll back the state
// transition that triggered the send.
type Notifier interface {
	Notify(userID uint, restaurantID *uint, title, message string) error
}

// Mailer sends the email half of a notification.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends through a plain SMTP relay configured from env.
type SMTPMailer struct {
	Host string
	Port string
	From string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s", m.From, to, subject, body)
	return smtp.SendMail(m.Host+":"+m.Port, nil, m.From, []string{to}, []byte(msg))
}

// LogMailer is the development fallback when no SMTP relay is configured.
type LogMailer struct{}

func (m *LogMailer) Send(to, subject, body string) error {
	utils.InfoLogger.Printf("MAIL to=%s subject=%q", to, subject)
	return nil
}

// NewMailerFromEnv picks SMTP when SMTP_HOST is set, log-only otherwise.
func NewMailerFromEnv() Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return &LogMailer{}
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "25"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "audits@localhost"
	}
	return &SMTPMailer{Host: host, Port: port, From: from}
}

// DBNotifier records an in-app notification row and mirrors it to email,
// matching how the original system paired Notification Log entries with
// sendmail calls.
type DBNotifier struct {
	DB     *gorm.DB
	Mailer Mailer
}

func NewDBNotifier(db *gorm.DB, mailer Mailer) *DBNotifier {
	return &DBNotifier{DB: db, Mailer: mailer}
}

func (n *DBNotifier) Notify(userID uint, restaurantID *uint, title, message string) error {
	notif := models.Notification{
		UserID:       userID,
		RestaurantID: restaurantID,
		Title:        title,
		Message:      message,
		Type:         models.NotificationAlert,
	}
	if err := n.DB.Create(&notif).Error; err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	var user models.User
	if err := n.DB.First(&user, userID).Error; err != nil {
		return fmt.Errorf("loading recipient %d: %w", userID, err)
	}
	if err := n.Mailer.Send(user.Email, title, message); err != nil {
		return fmt.Errorf("sending mail to %s: %w", user.Email, err)
	}
	return nil
}
