package sms

import (
	"context"

	"github.com/eternalmoments/backend/internal/config"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender sends SMS (or MMS when mediaURL is set) through Twilio.
type TwilioSender struct {
	client    *twilio.RestClient
	fromPhone string
}

func NewTwilioSender(cfg *config.Config) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.Twilio.AccountSID,
			Password: cfg.Twilio.AuthToken,
		}),
		fromPhone: cfg.Twilio.FromPhone,
	}
}

func (s *TwilioSender) Send(ctx context.Context, toPhone, body, mediaURL string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(s.fromPhone)
	params.SetBody(body)
	if mediaURL != "" {
		params.SetMediaUrl([]string{mediaURL})
	}

	_, err := s.client.Api.CreateMessage(params)
	return err
}
