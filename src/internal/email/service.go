package email

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// Notifier sends notification emails. It is a no-op unless SMTP is enabled
// in configuration.
type Notifier struct {
	cfg    *viper.Viper
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

// NewNotifier creates a new email notifier
func NewNotifier(cfg *viper.Viper) *Notifier {
	n := &Notifier{
		cfg:    cfg,
		from:   cfg.GetString("smtp.from"),
		logger: slog.Default(),
	}
	if cfg.GetBool("smtp.enabled") {
		n.dialer = gomail.NewDialer(
			cfg.GetString("smtp.host"),
			cfg.GetInt("smtp.port"),
			cfg.GetString("smtp.username"),
			cfg.GetString("smtp.password"),
		)
	}
	return n
}

// Enabled reports whether the notifier will actually send mail
func (n *Notifier) Enabled() bool {
	return n.dialer != nil
}

// SendFollowNotification tells an author about a new subscriber
func (n *Notifier) SendFollowNotification(authorEmail, authorName, followerName string) {
	subject := "You have a new subscriber"
	body := fmt.Sprintf("Hi %s,\n\n%s is now following your recipes.\n", authorName, followerName)
	n.send(authorEmail, subject, body)
}

func (n *Notifier) send(to, subject, body string) {
	if n.dialer == nil {
		return
	}

	message := gomail.NewMessage()
	message.SetHeader("From", n.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(message); err != nil {
		n.logger.Warn("failed to send notification email", "to", to, "error", err)
	}
}
