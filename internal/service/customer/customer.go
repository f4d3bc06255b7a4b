// internal/service/customer/customer.go
package customer

import (
	"context"
	"strings"

	"isp-billing-service/internal/domain/customer"
	"isp-billing-service/internal/domain/packages"
	ws "isp-billing-service/internal/domain/websocket"
	xerrors "isp-billing-service/internal/pkg/errors"
	"isp-billing-service/internal/pkg/pagination"

	"go.uber.org/zap"
)

// PackageLookup resolves the package a customer is assigned to.
type PackageLookup interface {
	FindByID(ctx context.Context, id int64) (*packages.Package, error)
}

type CustomerService struct {
	customerRepo customer.Repository
	packages     PackageLookup
	publisher    ws.Publisher
	logger       *zap.Logger
}

func NewCustomerService(customerRepo customer.Repository, packages PackageLookup, publisher ws.Publisher, logger *zap.Logger) *CustomerService {
	if publisher == nil {
		publisher = ws.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		packages:     packages,
		publisher:    publisher,
		logger:       logger,
	}
}

// ListCustomers returns one page of customers matching the filters.
func (s *CustomerService) ListCustomers(ctx context.Context, filters *customer.ListFilters) (*pagination.Page[customer.Customer], error) {
	filters.Normalize()
	if filters.Status != "" && !customer.ValidStatus(filters.Status) {
		return nil, xerrors.Validation("Invalid status filter")
	}

	items, total, err := s.customerRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, filters.Params, total), nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	return s.customerRepo.FindByID(ctx, id)
}

// CreateCustomer assigns the package and snapshots its price as the monthly fee.
func (s *CustomerService) CreateCustomer(ctx context.Context, req *customer.CreateCustomerRequest) (*customer.Customer, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	address := strings.TrimSpace(req.Address)
	if name == "" || phone == "" || address == "" || req.PackageID <= 0 {
		return nil, xerrors.Validation("Name, phone, address and package are required")
	}

	status := req.Status
	if status == "" {
		status = customer.StatusActive
	}
	if !customer.ValidStatus(status) {
		return nil, xerrors.Validation("Status must be active or inactive")
	}

	pkg, err := s.packages.FindByID(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}

	c := &customer.Customer{
		Name:       name,
		Email:      blankToNil(req.Email),
		Phone:      phone,
		Address:    address,
		PackageID:  pkg.ID,
		Status:     status,
		MonthlyFee: pkg.Price,
	}

	if err := s.customerRepo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create customer", zap.Error(err))
		return nil, err
	}
	withPackage(c, pkg)

	s.logger.Info("customer created",
		zap.Int64("customer_id", c.ID),
		zap.Int64("package_id", pkg.ID),
		zap.String("monthly_fee", c.MonthlyFee.String()),
	)
	s.publisher.Publish(ws.EventCustomerCreated, c)
	return c, nil
}

// UpdateCustomer applies the non-nil fields. Reassigning the package re-snapshots the monthly fee.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, req *customer.UpdateCustomerRequest) (*customer.Customer, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if c.Name = strings.TrimSpace(*req.Name); c.Name == "" {
			return nil, xerrors.Validation("Name cannot be empty")
		}
	}
	if req.Phone != nil {
		if c.Phone = strings.TrimSpace(*req.Phone); c.Phone == "" {
			return nil, xerrors.Validation("Phone cannot be empty")
		}
	}
	if req.Address != nil {
		if c.Address = strings.TrimSpace(*req.Address); c.Address == "" {
			return nil, xerrors.Validation("Address cannot be empty")
		}
	}
	if req.Email != nil {
		c.Email = blankToNil(req.Email)
	}
	if req.Status != nil {
		if !customer.ValidStatus(*req.Status) {
			return nil, xerrors.Validation("Status must be active or inactive")
		}
		c.Status = *req.Status
	}

	if req.PackageID != nil && *req.PackageID != c.PackageID {
		pkg, err := s.packages.FindByID(ctx, *req.PackageID)
		if err != nil {
			return nil, err
		}
		c.PackageID = pkg.ID
		c.MonthlyFee = pkg.Price
		withPackage(c, pkg)
		s.logger.Info("customer package changed",
			zap.Int64("customer_id", c.ID),
			zap.Int64("package_id", pkg.ID),
			zap.String("monthly_fee", c.MonthlyFee.String()),
		)
	}

	if err := s.customerRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.publisher.Publish(ws.EventCustomerUpdated, c)
	return c, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("customer deleted", zap.Int64("customer_id", id))
	s.publisher.Publish(ws.EventCustomerDeleted, ws.DeletedData{ID: id})
	return nil
}

func withPackage(c *customer.Customer, pkg *packages.Package) {
	name, speed, price := pkg.Name, pkg.Speed, pkg.Price
	c.PackageName = &name
	c.PackageSpeed = &speed
	c.PackagePrice = &price
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
