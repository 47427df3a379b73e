package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Client sends transactional email through Resend
type Client struct {
	resend *resend.Client
	from   string
}

// New builds a mail client. An empty key returns nil, which callers
// treat as "email disabled".
func New(apiKey, fromAddress string) *Client {
	if apiKey == "" {
		return nil
	}
	if fromAddress == "" {
		fromAddress = "noreply@agency.internal"
	}
	return &Client{
		resend: resend.NewClient(apiKey),
		from:   fromAddress,
	}
}

// Send delivers one HTML email
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	if _, err := c.resend.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}

// SendProposal emails a proposal link to a lead
func (c *Client) SendProposal(ctx context.Context, to, leadName, proposalTitle, viewURL string) error {
	if leadName == "" {
		leadName = "there"
	}
	subject := fmt.Sprintf("Proposal: %s", proposalTitle)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>We've prepared a proposal for you: <strong>%s</strong>.</p><p><a href="%s">View the proposal</a></p>`,
		leadName, proposalTitle, viewURL,
	)
	return c.Send(ctx, to, subject, html)
}
