package utils

import (
	"fmt"
	"html"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// EmailConfigured reports whether SendEmail has enough settings to try.
func EmailConfigured() bool {
	c := GetEmailConfig()
	return c.Host != "" && c.Port != "" && c.From != ""
}

var sendMail = smtp.SendMail

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// headerValue folds CR and LF out of v so it cannot start a new header.
func headerValue(v string) string {
	return strings.TrimSpace(headerBreaks.Replace(v))
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if !EmailConfigured() {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		headerValue(config.From), headerValue(to), headerValue(subject))
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	return sendMail(config.Host+":"+config.Port, auth, config.From, []string{to}, msg)
}

// OrderNotificationBody renders a plain-text order message as HTML.
func OrderNotificationBody(message string) string {
	lines := strings.Split(html.EscapeString(message), "\n")
	return "<h2>New catering order</h2>\n<p>" + strings.Join(lines[1:], "<br>\n") + "</p>"
}

// orderSubject uses the first word of the customer's name.
func orderSubject(customerName string) string {
	words := strings.Fields(headerValue(customerName))
	if len(words) == 0 {
		return "New catering order"
	}
	return fmt.Sprintf("New catering order from %s", words[0])
}

// SendOrderNotification emails the kitchen a copy of a checkout message in
// the background.
func SendOrderNotification(to, customerName, message string) {
	go func() {
		if err := SendEmail(to, orderSubject(customerName), OrderNotificationBody(message)); err != nil {
			log.Printf("Failed to send order notification to %s: %v", to, err)
		}
	}()
}
