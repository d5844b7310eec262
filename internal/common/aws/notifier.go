// internal/common/aws/notifier.go
package aws

import (
	"context"
	stderrors "errors"

	apperrors "wanted-applier/internal/common/errors"
	"wanted-applier/internal/common/logger"
	"wanted-applier/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type NotifierConfig struct {
	FromEmail string
	ToEmails  []string
	TopicARN  string
}

// Notifier delivers the run summary by email through SES and to an SNS topic.
// A nil client disables its channel.
type Notifier struct {
	config    NotifierConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewNotifier(cfg NotifierConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config:    cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// Notify sends summary over every enabled channel. Each channel is attempted
// even when another one fails; the failures are joined.
func (n *Notifier) Notify(ctx context.Context, summary models.RunSummary) error {
	var errs []error

	if n.sesClient != nil {
		for _, to := range n.config.ToEmails {
			if err := n.sendEmail(ctx, to, summary); err != nil {
				errs = append(errs, apperrors.NewNotificationSendFailedError("email", err))
				continue
			}
			n.logger.Info("Summary email sent", map[string]interface{}{"to": to, "runId": summary.RunID})
		}
	}

	if n.snsClient != nil && n.config.TopicARN != "" {
		if err := n.publish(ctx, summary); err != nil {
			errs = append(errs, apperrors.NewNotificationSendFailedError("sns", err))
		} else {
			n.logger.Info("Summary published", map[string]interface{}{"topic": n.config.TopicARN, "runId": summary.RunID})
		}
	}

	return stderrors.Join(errs...)
}

func (n *Notifier) sendEmail(ctx context.Context, to string, summary models.RunSummary) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(summary.Subject())},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(summary.Text())},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

func (n *Notifier) publish(ctx context.Context, summary models.RunSummary) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Subject:  aws.String(summary.Subject()),
		Message:  aws.String(summary.Text()),
	})
	return err
}
