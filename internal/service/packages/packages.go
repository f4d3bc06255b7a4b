// internal/service/packages/packages.go
package packages

import (
	"context"
	"strings"

	"isp-billing-service/internal/domain/packages"
	ws "isp-billing-service/internal/domain/websocket"
	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PackageService struct {
	repo      packages.Repository
	publisher ws.Publisher
	logger    *zap.Logger
}

func NewPackageService(repo packages.Repository, publisher ws.Publisher, logger *zap.Logger) *PackageService {
	if publisher == nil {
		publisher = ws.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackageService{repo: repo, publisher: publisher, logger: logger}
}

// ListPackages returns every package ordered by price, with subscriber counts.
func (s *PackageService) ListPackages(ctx context.Context) ([]packages.Package, error) {
	return s.repo.List(ctx)
}

func (s *PackageService) GetPackage(ctx context.Context, id int64) (*packages.Package, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PackageService) CreatePackage(ctx context.Context, req *packages.CreatePackageRequest) (*packages.Package, error) {
	if err := validatePackage(req.Name, req.Speed, req.Price); err != nil {
		return nil, err
	}

	p := &packages.Package{
		Name:        strings.TrimSpace(req.Name),
		Speed:       strings.TrimSpace(req.Speed),
		Price:       *req.Price,
		Description: req.Description,
		Features:    pq.StringArray(normalizeFeatures(req.Features)),
		IsPopular:   req.IsPopular,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("package created", zap.Int64("package_id", p.ID), zap.String("price", p.Price.String()))
	s.publisher.Publish(ws.EventPackageCreated, p)
	return p, nil
}

// UpdatePackage replaces the package. Customers keep the monthly fee captured at assignment.
func (s *PackageService) UpdatePackage(ctx context.Context, id int64, req *packages.UpdatePackageRequest) (*packages.Package, error) {
	if err := validatePackage(req.Name, req.Speed, req.Price); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(req.Name)
	existing.Speed = strings.TrimSpace(req.Speed)
	existing.Price = *req.Price
	existing.Description = req.Description
	existing.Features = pq.StringArray(normalizeFeatures(req.Features))
	existing.IsPopular = req.IsPopular
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.Info("package updated", zap.Int64("package_id", id))
	s.publisher.Publish(ws.EventPackageUpdated, existing)
	return existing, nil
}

func (s *PackageService) DeletePackage(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("package deleted", zap.Int64("package_id", id))
	s.publisher.Publish(ws.EventPackageDeleted, ws.DeletedData{ID: id})
	return nil
}

func validatePackage(name, speed string, price *decimal.Decimal) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(speed) == "" || price == nil {
		return xerrors.Validation("Name, speed and price are required")
	}
	if price.IsNegative() {
		return xerrors.Validation("Price must not be negative")
	}
	return nil
}

// normalizeFeatures trims entries, drops blanks and keeps order.
func normalizeFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
