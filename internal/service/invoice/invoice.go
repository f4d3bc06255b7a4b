// internal/service/invoice/invoice.go
package invoice

import (
	"context"
	"fmt"
	"time"

	"isp-billing-service/internal/domain/customer"
	"isp-billing-service/internal/domain/invoice"
	"isp-billing-service/internal/domain/setting"
	ws "isp-billing-service/internal/domain/websocket"
	xerrors "isp-billing-service/internal/pkg/errors"
	"isp-billing-service/internal/pkg/idgen"
	"isp-billing-service/internal/pkg/pagination"
	"isp-billing-service/internal/pkg/pdf"

	"go.uber.org/zap"
)

// CustomerLookup resolves the customer an invoice is billed to.
type CustomerLookup interface {
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
}

// Settings supplies the invoice numbering and document settings.
type Settings interface {
	InvoicePrefix(ctx context.Context) string
	DueDays(ctx context.Context) int
	Currency(ctx context.Context) string
	Profile(ctx context.Context) (*setting.CompanyProfile, error)
}

type InvoiceService struct {
	repo      invoice.Repository
	customers CustomerLookup
	settings  Settings
	ids       *idgen.Generator
	publisher ws.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewInvoiceService(
	repo invoice.Repository,
	customers CustomerLookup,
	settings Settings,
	ids *idgen.Generator,
	publisher ws.Publisher,
	logger *zap.Logger,
) *InvoiceService {
	if publisher == nil {
		publisher = ws.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = idgen.New()
	}
	return &InvoiceService{
		repo:      repo,
		customers: customers,
		settings:  settings,
		ids:       ids,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *InvoiceService) ListInvoices(ctx context.Context, filters *invoice.ListFilters) (*pagination.Page[invoice.Invoice], error) {
	filters.Normalize()
	if filters.Status != "" && !invoice.ValidStatus(filters.Status) {
		return nil, xerrors.Validation("Invalid status filter")
	}

	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, filters.Params, total), nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateInvoice issues a pending invoice. Amount and package default to the customer's snapshot.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req *invoice.CreateInvoiceRequest) (*invoice.Invoice, error) {
	if req.CustomerID <= 0 {
		return nil, xerrors.Validation("Customer is required")
	}

	c, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	var due time.Time
	if req.DueDate == "" {
		y, m, d := s.now().AddDate(0, 0, s.settings.DueDays(ctx)).Date()
		due = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	} else {
		due, err = time.Parse(invoice.DateLayout, req.DueDate)
		if err != nil {
			return nil, xerrors.Validation("Due date must be in YYYY-MM-DD format")
		}
	}

	amount := c.MonthlyFee
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount.IsNegative() {
		return nil, xerrors.Validation("Amount must not be negative")
	}

	packageID := req.PackageID
	if packageID == nil {
		pid := c.PackageID
		packageID = &pid
	}

	inv := &invoice.Invoice{
		ID:           s.ids.Invoice(s.settings.InvoicePrefix(ctx)),
		CustomerID:   c.ID,
		PackageID:    packageID,
		Amount:       amount,
		DueDate:      due,
		Status:       invoice.StatusPending,
		Notes:        req.Notes,
		CustomerName: &c.Name,
	}
	if *packageID == c.PackageID {
		inv.PackageName = c.PackageName
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", inv.ID),
		zap.Int64("customer_id", c.ID),
		zap.String("amount", inv.Amount.String()),
	)
	s.publisher.Publish(ws.EventInvoiceCreated, inv)
	return inv, nil
}

// UpdateInvoice changes status and notes. Settlement only happens through a recorded payment,
// and a settled invoice cannot be moved back.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id string, req *invoice.UpdateInvoiceRequest) (*invoice.Invoice, error) {
	if !invoice.ValidStatus(req.Status) {
		return nil, xerrors.Validation("Status must be one of pending, paid, overdue, cancelled")
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.CheckTransition(current.Status, req.Status); err != nil {
		return nil, err
	}

	// a payment may commit after the read above; the repository rechecks against the row
	updated, err := s.repo.Update(ctx, id, req.Status, req.Notes)
	if err != nil {
		return nil, err
	}
	updated.CustomerName = current.CustomerName
	updated.PackageName = current.PackageName

	s.logger.Info("invoice updated",
		zap.String("invoice_id", id),
		zap.String("from", current.Status),
		zap.String("to", updated.Status),
	)
	s.publisher.Publish(ws.EventInvoiceUpdated, updated)
	return updated, nil
}

func (s *InvoiceService) DeleteInvoice(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("invoice deleted", zap.String("invoice_id", id))
	s.publisher.Publish(ws.EventInvoiceDeleted, ws.DeletedData{ID: id})
	return nil
}

// RenderPDF returns the printable invoice document.
func (s *InvoiceService) RenderPDF(ctx context.Context, id string) ([]byte, *invoice.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	doc := &pdf.InvoiceDoc{
		Currency: s.settings.Currency(ctx),
		Number:   inv.ID,
		Status:   inv.Status,
		IssuedAt: inv.CreatedAt,
		DueDate:  inv.DueDate,
		Amount:   inv.Amount,
	}
	if inv.Notes != nil {
		doc.Notes = *inv.Notes
	}
	if inv.PackageName != nil {
		doc.PackageName = *inv.PackageName
	}

	if profile, err := s.settings.Profile(ctx); err == nil {
		doc.Company = pdf.Company{
			Name:    profile.CompanyName,
			Email:   profile.Email,
			Phone:   profile.Phone,
			Website: profile.Website,
			Address: profile.Address,
		}
	} else {
		s.logger.Warn("rendering invoice without company profile", zap.Error(err))
	}

	if c, err := s.customers.FindByID(ctx, inv.CustomerID); err == nil {
		doc.CustomerName = c.Name
		doc.CustomerAddr = c.Address
		doc.CustomerTel = c.Phone
		if inv.PackageID != nil && *inv.PackageID == c.PackageID && c.PackageSpeed != nil {
			doc.PackageSpeed = *c.PackageSpeed
		}
	} else if inv.CustomerName != nil {
		doc.CustomerName = *inv.CustomerName
	}

	out, err := pdf.RenderInvoice(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("invoice %s: %w", id, err)
	}
	return out, inv, nil
}
