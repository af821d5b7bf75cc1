package mail

import (
	"folioauth/internal/render"
)

func SendTwoFactorEnabled(sender MailSender, toEmail string, backupCodeCount int) error {
	params := map[string]interface{}{
		"backupCodeCount": backupCodeCount,
	}
	body, err := render.RenderHTML("mail/twofactor-enabled", params)
	if err != nil {
		return err
	}
	return sender.Send(&Message{
		To:      []string{toEmail},
		Subject: "Two-factor authentication was enabled on your account",
		Body:    body,
		IsHTML:  true,
	})
}

func SendTwoFactorDisabled(sender MailSender, toEmail string) error {
	body, err := render.RenderHTML("mail/twofactor-disabled", nil)
	if err != nil {
		return err
	}
	return sender.Send(&Message{
		To:      []string{toEmail},
		Subject: "Two-factor authentication was disabled on your account",
		Body:    body,
		IsHTML:  true,
	})
}
