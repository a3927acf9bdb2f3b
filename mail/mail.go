// Package mail sends plain text emails over SMTP or Amazon SES.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, Username: username, Password: password, From: from, send: smtp.SendMail}
}

// Message строит письмо с заголовками
func Message(from, to, subject, body string) []byte {
	// переводы строк в заголовках запрещены
	subject = strings.NewReplacer("\r", " ", "\n", " ").Replace(subject)
	return []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s", from, to, subject, body))
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	return m.send(addr, auth, m.From, []string{to}, Message(m.From, to, subject, body))
}

type SESOptions struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	From            string
}

type SESMailer struct {
	client *sesv2.Client
	from   string
}

func NewSESMailer(ctx context.Context, opts SESOptions) (*SESMailer, error) {
	if opts.From == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, errors.New("sender and credentials must be set")
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load SES config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg, func(o *sesv2.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return &SESMailer{client: client, from: opts.From}, nil
}

func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	return err
}
