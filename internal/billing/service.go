package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/telemetry"
)

var (
	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid invoice status transition")

	// ErrOverpayment is returned when a payment exceeds the
	// outstanding balance.
	ErrOverpayment = errors.New("payment exceeds outstanding balance")
)

var validMethods = map[string]bool{
	MethodCash: true, MethodCard: true, MethodInsurance: true, MethodTransfer: true,
}

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
}

// NewService creates a billing service. metrics may be nil when
// telemetry is disabled.
func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{repo: repo, publisher: publisher, metrics: metrics}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("patient id is required")
	}
	if req.TaxBps < 0 || req.TaxBps > 10000 {
		return nil, fmt.Errorf("tax rate must be between 0 and 10000 basis points")
	}

	i, err := s.repo.CreateInvoice(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.recordOperation(ctx, "create")
	return i, nil
}

func (s *Service) GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error) {
	i, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return i, nil
}

func (s *Service) ListInvoices(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedInvoiceListResponse, error) {
	params.Validate()

	invoices, total, err := s.repo.ListInvoices(ctx, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	return &PaginatedInvoiceListResponse{
		Success:  true,
		Invoices: invoices,
		Meta:     params.CalculateMeta(total),
	}, nil
}

func (s *Service) AddLineItem(ctx context.Context, invoiceID string, req AddLineItemRequest) (*InvoiceResponse, error) {
	if req.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if req.UnitPriceCents < 0 {
		return nil, fmt.Errorf("unit price cannot be negative")
	}

	current, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if current.Status != StatusDraft {
		return nil, fmt.Errorf("%w: line items can only change on a draft invoice", ErrInvalidTransition)
	}

	i, err := s.repo.AddLineItem(ctx, invoiceID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to add line item: %w", err)
	}
	return i, nil
}

func (s *Service) RemoveLineItem(ctx context.Context, invoiceID, itemID string) (*InvoiceResponse, error) {
	current, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if current.Status != StatusDraft {
		return nil, fmt.Errorf("%w: line items can only change on a draft invoice", ErrInvalidTransition)
	}

	i, err := s.repo.RemoveLineItem(ctx, invoiceID, itemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to remove line item: %w", err)
	}
	return i, nil
}

func (s *Service) IssueInvoice(ctx context.Context, id string) (*InvoiceResponse, error) {
	current, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if current.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft invoices can be issued, invoice is %s", ErrInvalidTransition, current.Status)
	}
	if len(current.LineItems) == 0 {
		return nil, fmt.Errorf("an invoice needs at least one line item before issuing")
	}

	i, err := s.repo.IssueInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to issue invoice: %w", err)
	}

	s.recordOperation(ctx, "issue")
	s.publishEvent(ctx, messaging.EventInvoiceIssued, i)
	return i, nil
}

func (s *Service) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*InvoiceResponse, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	if !validMethods[req.Method] {
		return nil, fmt.Errorf("unknown payment method %q", req.Method)
	}

	current, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if current.Status != StatusIssued && current.Status != StatusPartiallyPaid {
		return nil, fmt.Errorf("%w: payments apply to issued invoices only, invoice is %s", ErrInvalidTransition, current.Status)
	}
	if req.AmountCents > current.BalanceCents() {
		return nil, ErrOverpayment
	}

	i, err := s.repo.RecordPayment(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.recordOperation(ctx, "payment")
	if i.Status == StatusPaid {
		s.publishEvent(ctx, messaging.EventInvoicePaid, i)
	}
	return i, nil
}

func (s *Service) VoidInvoice(ctx context.Context, id string, req VoidInvoiceRequest) (*InvoiceResponse, error) {
	if req.Reason == "" {
		return nil, fmt.Errorf("void reason is required")
	}

	current, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if current.Status == StatusPaid || current.Status == StatusVoid {
		return nil, fmt.Errorf("%w: a %s invoice cannot be voided", ErrInvalidTransition, current.Status)
	}
	if current.AmountPaidCents > 0 {
		return nil, fmt.Errorf("%w: invoices with recorded payments cannot be voided", ErrInvalidTransition)
	}

	i, err := s.repo.VoidInvoice(ctx, id, req.Reason)
	if err != nil {
		return nil, fmt.Errorf("failed to void invoice: %w", err)
	}

	s.recordOperation(ctx, "void")
	return i, nil
}

func (s *Service) recordOperation(ctx context.Context, operation string) {
	if s.metrics != nil {
		s.metrics.RecordInvoiceOperation(ctx, operation)
	}
}

func (s *Service) publishEvent(ctx context.Context, routingKey string, i *InvoiceResponse) {
	event := messaging.InvoiceEvent{
		BaseEvent: messaging.NewBaseEvent(routingKey),
		Data: messaging.InvoiceData{
			InvoiceID:  i.ID,
			PatientID:  i.PatientID,
			TotalCents: i.TotalCents,
			Status:     i.Status,
			ChangedAt:  time.Now().UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event: %v", routingKey, err)
	}
}
