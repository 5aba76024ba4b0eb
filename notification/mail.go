package notification

import (
	"fmt"
	"strings"

	"gopkg.in/mail.v2"
)

type MailConfig struct {
	Host             string
	Port             int
	Username         string
	Password         string
	Domain           string
	BroadcastAddress string
}

type MailService struct {
	config *MailConfig
}

func NewMailService(auth *MailConfig) *MailService {
	return &MailService{auth}
}

func (ms *MailService) ProcessEvent(event *Event) error {
	recipient, err := ms.recipient(event)
	if err != nil {
		return err
	}

	return ms.send(recipient, event.Payload)
}

func (ms *MailService) recipient(event *Event) (string, error) {
	if event.AccountID == "" {
		if ms.config.BroadcastAddress == "" {
			return "", fmt.Errorf(
				"no broadcast address configured for broadcast event",
			)
		}

		return ms.config.BroadcastAddress, nil
	}

	if strings.Contains(event.AccountID, "@") {
		return event.AccountID, nil
	}

	return fmt.Sprintf("%s@%s", event.AccountID, ms.config.Domain), nil
}

func (ms *MailService) send(recipient, payload string) error {
	message := mail.NewMessage()
	message.SetHeader("From", ms.config.Username)
	message.SetHeader("To", recipient)
	message.SetHeader("Subject", "Coinpit notification")
	message.SetBody("text/plain", payload)

	dialer := mail.NewDialer(
		ms.config.Host,
		ms.config.Port,
		ms.config.Username,
		ms.config.Password,
	)

	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("could not send email: [%v]", err)
	}

	return nil
}
