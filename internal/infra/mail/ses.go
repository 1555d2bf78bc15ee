package mail

import (
	"context"

	"parish/internal/domain/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/pkg/errors"
)

// sesAPI is the subset of the SES v2 client the sender uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers mail through Amazon SES v2.
type SESSender struct {
	client           sesAPI
	sender           string
	replyTo          string
	configurationSet string
}

// NewSESSender builds an SES transport from an integration config map.
// Recognized keys: region, access_key_id, secret_access_key, sender_email,
// reply_to, configuration_set.
func NewSESSender(ctx context.Context, cfg map[string]any) (*SESSender, error) {
	region := stringOpt(cfg, "region")
	accessKeyID := stringOpt(cfg, "access_key_id")
	secretAccessKey := stringOpt(cfg, "secret_access_key")
	if region == "" || accessKeyID == "" || secretAccessKey == "" {
		return nil, errors.New("ses integration requires region, access_key_id and secret_access_key")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build AWS config")
	}

	return &SESSender{
		client:           sesv2.NewFromConfig(awsCfg),
		sender:           stringOpt(cfg, "sender_email"),
		replyTo:          stringOpt(cfg, "reply_to"),
		configurationSet: stringOpt(cfg, "configuration_set"),
	}, nil
}

// Name returns the transport identifier.
func (s *SESSender) Name() string {
	return "ses"
}

// Send delivers the message through SES.
func (s *SESSender) Send(ctx context.Context, msg *service.EmailMessage) error {
	sender := msg.Sender
	if sender == "" {
		sender = s.sender
	}
	if sender == "" {
		return errors.New("ses transport has no sender address")
	}

	body := &types.Body{}
	content := &types.Content{Data: aws.String(msg.Body)}
	if msg.HTML {
		body.Html = content
	} else {
		body.Text = content
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(sender),
		Destination:      &types.Destination{ToAddresses: msg.Recipients},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body:    body,
			},
		},
	}
	if s.replyTo != "" {
		input.ReplyToAddresses = []string{s.replyTo}
	}
	if s.configurationSet != "" {
		input.ConfigurationSetName = aws.String(s.configurationSet)
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return errors.Wrap(err, "ses send failed")
	}

	return nil
}
