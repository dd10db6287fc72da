package utils

import (
	"errors"
	"fmt"
	"time"

	resty "github.com/go-resty/resty/v2"
)

const (
	AlertNotification = 0
	InfoNotification  = 1
)

type SlackRequestBody struct {
	Text string `json:"text"`
}

// Notifier posts to Slack 'Incoming Webhook' urls. An empty url disables that channel.
type Notifier struct {
	alertWebhookURL string
	infoWebhookURL  string
	client          *resty.Client
}

func NewNotifier(alertWebhookURL, infoWebhookURL string) *Notifier {
	return &Notifier{
		alertWebhookURL: alertWebhookURL,
		infoWebhookURL:  infoWebhookURL,
		client:          resty.New().SetTimeout(10 * time.Second),
	}
}

// SendSlackNotification posts msg to the webhook of notiType.
func (n *Notifier) SendSlackNotification(msg string, notiType int) error {
	if n == nil {
		return nil
	}
	var webhookURL string
	switch notiType {
	case AlertNotification:
		webhookURL = n.alertWebhookURL
	case InfoNotification:
		webhookURL = n.infoWebhookURL
	default:
		return errors.New("Notification type is not supported")
	}
	if webhookURL == "" {
		return nil
	}

	response, err := n.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(SlackRequestBody{Text: msg}).
		Post(webhookURL)
	if err != nil {
		return err
	}
	if response.StatusCode() != 200 {
		return fmt.Errorf("Response status code: %v", response.StatusCode())
	}
	if response.String() != "ok" {
		return errors.New("Non-ok response returned from Slack")
	}
	return nil
}
