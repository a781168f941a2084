package notification

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/config"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/request"
)

// SlackNotification sends an error message to the configured Slack
// webhook, formatted as a Slack block payload.
func SlackNotification(err error) {
	data := json.RawMessage(fmt.Sprintf(`{
		"blocks": [
			{
				"type": "header",
				"text": {
					"type": "plain_text",
					"text": "Error From FinPay Settlement",
					"emoji": true
				}
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "*Error:*\n%v"
					}
				]
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "*Time:*\n%v"
					}
				]
			}
		]
	}`, err.Error(), time.Now().Format(time.RFC822)))

	conf, err := config.Fetch()
	if err != nil {
		log.Println(err)
		return
	}

	payload, err := request.ToJsonReq(&data)
	if err != nil {
		log.Println(err)
		return
	}

	req, err := http.NewRequest("POST", conf.Notification.Slack.WebhookUrl, payload)
	if err != nil {
		log.Println(err)
		return
	}

	var response map[string]interface{}
	_, err = request.Call(req, &response)
	if err != nil {
		log.Println(err)
	}
}

// NotifyError sends an error notification through the configured
// channels. It logs the error locally and notifies Slack when a webhook
// is configured. Runs asynchronously to avoid blocking the caller.
func NotifyError(systemError error) {
	go func(systemError error) {
		logrus.Error(systemError)

		conf, err := config.Fetch()
		if err != nil {
			log.Println(err)
			return
		}

		if conf.Notification.Slack.WebhookUrl != "" {
			SlackNotification(systemError)
		}
	}(systemError)
}

// SendFailureEmail sends a plain-text alert mail to the configured
// operator address, optionally attaching a log file. Delivery is
// fire-and-forget: failures are logged and never escalated back to the
// orchestrator, whose lot record stays the source of truth.
func SendFailureEmail(subject, body, attachmentPath string) {
	conf, err := config.Fetch()
	if err != nil {
		log.Println(err)
		return
	}
	mail := conf.Notification.Email
	if mail.Host == "" || mail.Destination == "" {
		logrus.Warnf("mail not configured, dropping alert: %s", subject)
		return
	}

	msg := buildMessage(mail.Username, mail.Destination, subject, body, "text/plain", attachmentPath)
	if err := send(mail, msg); err != nil {
		logrus.Errorf("failure email %q not sent: %v", subject, err)
	}
}

// SendHTMLEmail sends an HTML-bodied mail, used for the monthly report.
func SendHTMLEmail(subject, htmlBody string) {
	conf, err := config.Fetch()
	if err != nil {
		log.Println(err)
		return
	}
	mail := conf.Notification.Email
	if mail.Host == "" || mail.Destination == "" {
		logrus.Warnf("mail not configured, dropping report: %s", subject)
		return
	}

	msg := buildMessage(mail.Username, mail.Destination, subject, htmlBody, "text/html", "")
	if err := send(mail, msg); err != nil {
		logrus.Errorf("report email %q not sent: %v", subject, err)
	}
}

func send(mail config.EmailConfig, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", mail.Host, mail.Port)
	auth := smtp.PlainAuth("", mail.Username, mail.Password, mail.Host)
	return smtp.SendMail(addr, auth, mail.Username, []string{mail.Destination}, msg)
}

const mimeBoundary = "finpay-alert-boundary"

func buildMessage(from, to, subject, body, contentType, attachmentPath string) []byte {
	var attachment []byte
	if attachmentPath != "" {
		data, err := os.ReadFile(attachmentPath)
		if err != nil {
			logrus.Warnf("could not read attachment %s: %v", attachmentPath, err)
		} else {
			attachment = data
		}
	}

	header := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n", from, to, subject)

	if attachment == nil {
		return []byte(header +
			fmt.Sprintf("Content-Type: %s; charset=UTF-8\r\n\r\n%s\r\n", contentType, body))
	}

	name := filepath.Base(attachmentPath)
	encoded := base64.StdEncoding.EncodeToString(attachment)
	return []byte(header +
		fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mimeBoundary) +
		fmt.Sprintf("--%s\r\nContent-Type: %s; charset=UTF-8\r\n\r\n%s\r\n", mimeBoundary, contentType, body) +
		fmt.Sprintf("--%s\r\nContent-Type: application/octet-stream\r\nContent-Transfer-Encoding: base64\r\nContent-Disposition: attachment; filename=%q\r\n\r\n%s\r\n", mimeBoundary, name, encoded) +
		fmt.Sprintf("--%s--\r\n", mimeBoundary))
}
