package stripeclient

import (
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Client wraps the Stripe SDK for the two operations the admin panel
// needs: creating customers and issuing send-by-email invoices.
type Client struct {
	api *client.API
}

// New builds a Stripe client. An empty key returns nil, which callers
// treat as "billing disabled".
func New(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	api := &client.API{}
	api.Init(apiKey, nil)
	return &Client{api: api}
}

// Customer is the subset of the Stripe customer we mirror locally
type Customer struct {
	ID    string
	Email string
}

// Invoice is the subset of the Stripe invoice we mirror locally
type Invoice struct {
	ID         string
	Status     string
	AmountDue  int64
	AmountPaid int64
	Currency   string
	HostedURL  string
	DueDate    *time.Time
	PaidAt     *time.Time
}

// CreateCustomer creates a Stripe customer for a client lead
func (c *Client) CreateCustomer(email, name string) (*Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}

	cust, err := c.api.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe customer creation failed: %w", err)
	}
	return &Customer{ID: cust.ID, Email: cust.Email}, nil
}

// CreateInvoice creates, finalizes and sends a send_invoice-collection
// invoice with a single line item.
func (c *Client) CreateInvoice(customerID string, amountCents int64, currency, description string, daysUntilDue int) (*Invoice, error) {
	if currency == "" {
		currency = "usd"
	}
	if daysUntilDue <= 0 {
		daysUntilDue = 14
	}

	inv, err := c.api.Invoices.New(&stripe.InvoiceParams{
		Customer:         stripe.String(customerID),
		CollectionMethod: stripe.String(string(stripe.InvoiceCollectionMethodSendInvoice)),
		DaysUntilDue:     stripe.Int64(int64(daysUntilDue)),
	})
	if err != nil {
		return nil, fmt.Errorf("stripe invoice creation failed: %w", err)
	}

	_, err = c.api.InvoiceItems.New(&stripe.InvoiceItemParams{
		Customer:    stripe.String(customerID),
		Invoice:     stripe.String(inv.ID),
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
	})
	if err != nil {
		return nil, fmt.Errorf("stripe invoice item creation failed: %w", err)
	}

	finalized, err := c.api.Invoices.FinalizeInvoice(inv.ID, &stripe.InvoiceFinalizeInvoiceParams{})
	if err != nil {
		return nil, fmt.Errorf("stripe invoice finalization failed: %w", err)
	}

	sent, err := c.api.Invoices.SendInvoice(finalized.ID, &stripe.InvoiceSendInvoiceParams{})
	if err != nil {
		return nil, fmt.Errorf("stripe invoice send failed: %w", err)
	}

	return toInvoice(sent), nil
}

// GetInvoice fetches the current state of an invoice for mirror refresh
func (c *Client) GetInvoice(invoiceID string) (*Invoice, error) {
	inv, err := c.api.Invoices.Get(invoiceID, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe invoice fetch failed: %w", err)
	}
	return toInvoice(inv), nil
}

func toInvoice(inv *stripe.Invoice) *Invoice {
	out := &Invoice{
		ID:         inv.ID,
		Status:     string(inv.Status),
		AmountDue:  inv.AmountDue,
		AmountPaid: inv.AmountPaid,
		Currency:   string(inv.Currency),
		HostedURL:  inv.HostedInvoiceURL,
	}
	if inv.DueDate > 0 {
		due := time.Unix(inv.DueDate, 0)
		out.DueDate = &due
	}
	if inv.StatusTransitions != nil && inv.StatusTransitions.PaidAt > 0 {
		paid := time.Unix(inv.StatusTransitions.PaidAt, 0)
		out.PaidAt = &paid
	}
	return out
}
