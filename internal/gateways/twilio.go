package gateways

import (
	"context"
	"errors"
	"net/http"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/observability"
	"github.com/mychangex/app-wallet/internal/utils"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
	"go.uber.org/zap"
)

// Status Twilio Verify reports for a correct code
const verificationApproved = "approved"

// messageCreator is the part of the Twilio v2010 API the SMS sender needs
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// verifier is the part of the Twilio Verify v2 API the verify gateway needs
type verifier interface {
	CreateVerification(serviceSid string, params *verify.CreateVerificationParams) (*verify.VerifyV2Verification, error)
	CreateVerificationCheck(serviceSid string, params *verify.CreateVerificationCheckParams) (*verify.VerifyV2VerificationCheck, error)
}

// NewTwilioClient creates a REST client from account credentials
func NewTwilioClient(accountSID, authToken string) *twilio.RestClient {
	return twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
}

// twilioMessage extracts the human-readable part of a Twilio error about the request.
// Credential and server-side failures return "".
func twilioMessage(err error) string {
	var restErr *twilioclient.TwilioRestError
	if !errors.As(err, &restErr) || restErr.Message == "" {
		return ""
	}
	switch {
	case restErr.Status == http.StatusUnauthorized, restErr.Status == http.StatusForbidden, restErr.Status >= http.StatusInternalServerError:
		return ""
	}
	return restErr.Message
}

func twilioAttrs(err error) map[string]interface{} {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		return map[string]interface{}{"twilio.code": restErr.Code, "twilio.status": restErr.Status}
	}
	return nil
}

// TwilioSMSSender delivers codes produced by RedisAuthGateway as plain SMS
type TwilioSMSSender struct {
	api    messageCreator
	from   string
	logger *logging.SafeLogger
}

// NewTwilioSMSSender sends from the given Twilio number
func NewTwilioSMSSender(client *twilio.RestClient, from string, logger *logging.SafeLogger) *TwilioSMSSender {
	return newTwilioSMSSender(client.Api, from, logger)
}

func newTwilioSMSSender(api messageCreator, from string, logger *logging.SafeLogger) *TwilioSMSSender {
	if logger == nil {
		logger = logging.Logger
	}
	return &TwilioSMSSender{api: api, from: from, logger: logger}
}

// SendSMS sends body to the phone number to
func (s *TwilioSMSSender) SendSMS(ctx context.Context, to, body string) error {
	_, span := utils.TraceExternalService(ctx, "twilio", "create_message")
	defer span.End()
	utils.AddSpanAttribute(span, "sms.to", observability.MaskPhone(to))

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		utils.RecordErrorInSpan(span, err, twilioAttrs(err))
		return &models.ExternalError{Op: "twilio_create_message", Message: ErrDeliveryFailed.Error(), Err: err}
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	s.logger.Debug("sms sent",
		zap.String("to", observability.MaskPhone(to)),
		zap.String("sid", sid))
	return nil
}

// TwilioVerifyGateway delegates code generation and checking to Twilio Verify
type TwilioVerifyGateway struct {
	api        verifier
	serviceSID string
	logger     *logging.SafeLogger
}

// NewTwilioVerifyGateway uses the Verify service identified by serviceSID
func NewTwilioVerifyGateway(client *twilio.RestClient, serviceSID string, logger *logging.SafeLogger) *TwilioVerifyGateway {
	return newTwilioVerifyGateway(client.VerifyV2, serviceSID, logger)
}

func newTwilioVerifyGateway(api verifier, serviceSID string, logger *logging.SafeLogger) *TwilioVerifyGateway {
	if logger == nil {
		logger = logging.Logger
	}
	return &TwilioVerifyGateway{api: api, serviceSID: serviceSID, logger: logger}
}

// SendCode starts an SMS verification for phone
func (g *TwilioVerifyGateway) SendCode(ctx context.Context, phone string) error {
	_, span := utils.TraceExternalService(ctx, "twilio", "create_verification")
	defer span.End()

	params := &verify.CreateVerificationParams{}
	params.SetTo(phone)
	params.SetChannel("sms")

	if _, err := g.api.CreateVerification(g.serviceSID, params); err != nil {
		utils.RecordErrorInSpan(span, err, twilioAttrs(err))
		g.logger.Warn("twilio verification request failed",
			zap.String("phone", observability.MaskPhone(phone)),
			zap.Error(err))
		if msg := twilioMessage(err); msg != "" {
			return errors.New(msg)
		}
		return ErrDeliveryFailed
	}
	return nil
}

// VerifyCode checks code with Twilio; anything but an approved check is a mismatch
func (g *TwilioVerifyGateway) VerifyCode(ctx context.Context, phone, code string) error {
	_, span := utils.TraceExternalService(ctx, "twilio", "create_verification_check")
	defer span.End()

	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(phone)
	params.SetCode(code)

	resp, err := g.api.CreateVerificationCheck(g.serviceSID, params)
	if err != nil {
		utils.RecordErrorInSpan(span, err, twilioAttrs(err))
		g.logger.Warn("twilio verification check failed",
			zap.String("phone", observability.MaskPhone(phone)),
			zap.Error(err))
		if msg := twilioMessage(err); msg != "" {
			return errors.New(msg)
		}
		return &models.ExternalError{Op: "twilio_verification_check", Message: models.DefaultAuthUnavailableMessage, Err: err}
	}

	if resp == nil || resp.Status == nil || *resp.Status != verificationApproved {
		return ErrCodeMismatch
	}
	return nil
}
