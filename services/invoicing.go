package services

import (
	"context"
	"fmt"
	"lessonbook_app_go/config"
	"lessonbook_app_go/models"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"
)

// Invoicer bills a quoted booking request with an external provider and
// returns the provider's invoice reference.
type Invoicer interface {
	CreateInvoice(ctx context.Context, teacher *models.Teacher, request *models.BookingRequest) (string, error)
}

// NoopInvoicer is used when no billing provider is configured
type NoopInvoicer struct{}

func (NoopInvoicer) CreateInvoice(ctx context.Context, teacher *models.Teacher, request *models.BookingRequest) (string, error) {
	return "", nil
}

// StripeInvoicer creates a send_invoice Stripe invoice per quote
type StripeInvoicer struct {
	api      *client.API
	currency string
	dueDays  int64
}

// NewInvoicer returns a Stripe invoicer when a secret key is configured
func NewInvoicer(cfg *config.Config) Invoicer {
	if cfg.StripeSecretKey == "" {
		return NoopInvoicer{}
	}
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)
	due := int64(cfg.InvoiceDueDays)
	if due <= 0 {
		due = 7
	}
	return &StripeInvoicer{api: api, currency: cfg.InvoiceCurrency, dueDays: due}
}

func (s *StripeInvoicer) CreateInvoice(ctx context.Context, teacher *models.Teacher, request *models.BookingRequest) (string, error) {
	currency := s.currency
	if teacher.Currency != "" {
		currency = strings.ToLower(teacher.Currency)
	}

	customerParams := &stripe.CustomerParams{
		Email: stripe.String(request.Customer.Email),
		Name:  stripe.String(request.Customer.Name),
	}
	customerParams.Context = ctx
	customerParams.AddMetadata("booking_request_id", request.ID)
	cust, err := s.api.Customers.New(customerParams)
	if err != nil {
		return "", fmt.Errorf("stripe customer: %w", err)
	}

	description := request.QuoteDescription
	if description == "" {
		description = "Lessons with " + teacher.Name
	}
	itemParams := &stripe.InvoiceItemParams{
		Customer:    stripe.String(cust.ID),
		Amount:      stripe.Int64(request.Amount.Mul(decimalHundred).Round(0).IntPart()),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
	}
	itemParams.Context = ctx
	itemParams.IdempotencyKey = stripe.String("quote-item:" + request.ID + ":" + request.Amount.String())
	if _, err := s.api.InvoiceItems.New(itemParams); err != nil {
		return "", fmt.Errorf("stripe invoice item: %w", err)
	}

	invoiceParams := &stripe.InvoiceParams{
		Customer:                    stripe.String(cust.ID),
		CollectionMethod:            stripe.String(string(stripe.InvoiceCollectionMethodSendInvoice)),
		DaysUntilDue:                stripe.Int64(s.dueDays),
		PendingInvoiceItemsBehavior: stripe.String("include"),
		AutoAdvance:                 stripe.Bool(true),
	}
	invoiceParams.Context = ctx
	invoiceParams.AddMetadata("teacher_id", teacher.ID)
	invoiceParams.AddMetadata("booking_request_id", request.ID)
	inv, err := s.api.Invoices.New(invoiceParams)
	if err != nil {
		return "", fmt.Errorf("stripe invoice: %w", err)
	}

	zap.L().Info("stripe invoice created", zap.String("invoice_id", inv.ID), zap.String("booking_request_id", request.ID))
	return inv.ID, nil
}

// Billing is the invoicer used by quote promotion
var Billing Invoicer = NoopInvoicer{}

// SetInvoicer replaces the package invoicer
func SetInvoicer(inv Invoicer) {
	Billing = inv
}
