package customer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"isp-billing-service/internal/domain/customer"
	"isp-billing-service/internal/domain/packages"
	ws "isp-billing-service/internal/domain/websocket"
	xerrors "isp-billing-service/internal/pkg/errors"
	"isp-billing-service/internal/pkg/pagination"
	packagesvc "isp-billing-service/internal/service/packages"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPackages struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]packages.Package
}

func newMemPackages() *memPackages {
	return &memPackages{rows: map[int64]packages.Package{}}
}

func (m *memPackages) List(context.Context) ([]packages.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]packages.Package, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	return out, nil
}

func (m *memPackages) FindByID(_ context.Context, id int64) (*packages.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, xerrors.NotFound("Package")
	}
	return &p, nil
}

func (m *memPackages) Create(_ context.Context, p *packages.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.rows[p.ID] = *p
	return nil
}

func (m *memPackages) Update(_ context.Context, p *packages.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[p.ID]; !ok {
		return xerrors.NotFound("Package")
	}
	m.rows[p.ID] = *p
	return nil
}

func (m *memPackages) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memCustomers struct {
	mu     sync.Mutex
	nextID int64
	rows   []customer.Customer
}

func (m *memCustomers) List(_ context.Context, f *customer.ListFilters) ([]customer.Customer, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []customer.Customer
	for _, c := range m.rows {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, c)
	}
	total := int64(len(matched))
	start := f.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memCustomers) find(id int64) int {
	for i, c := range m.rows {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (m *memCustomers) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return nil, xerrors.NotFound("Customer")
	}
	c := m.rows[i]
	return &c, nil
}

func (m *memCustomers) Create(_ context.Context, c *customer.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.rows = append(m.rows, *c)
	return nil
}

func (m *memCustomers) Update(_ context.Context, c *customer.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(c.ID)
	if i < 0 {
		return xerrors.NotFound("Customer")
	}
	m.rows[i] = *c
	return nil
}

func (m *memCustomers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return xerrors.NotFound("Customer")
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []ws.EventType
}

func (r *recorder) Publish(event ws.EventType, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) count(event ws.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

type fixture struct {
	customers *CustomerService
	packages  *packagesvc.PackageService
	pkgRepo   *memPackages
	custRepo  *memCustomers
	events    *recorder
}

func newFixture() *fixture {
	pkgRepo := newMemPackages()
	custRepo := &memCustomers{}
	events := &recorder{}
	return &fixture{
		customers: NewCustomerService(custRepo, pkgRepo, events, nil),
		packages:  packagesvc.NewPackageService(pkgRepo, events, nil),
		pkgRepo:   pkgRepo,
		custRepo:  custRepo,
		events:    events,
	}
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func (f *fixture) createPackage(t *testing.T, amount int64) *packages.Package {
	t.Helper()
	p, err := f.packages.CreatePackage(context.Background(), &packages.CreatePackageRequest{
		Name:  "Home 20",
		Speed: "20 Mbps",
		Price: price(amount),
	})
	require.NoError(t, err)
	return p
}

func TestMonthlyFeeIsSnapshotOfPackagePrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	pkg := f.createPackage(t, 100000)

	c, err := f.customers.CreateCustomer(ctx, &customer.CreateCustomerRequest{
		Name: "Budi", Phone: "0812", Address: "Jl. Merdeka 1", PackageID: pkg.ID,
	})
	require.NoError(t, err)
	assert.True(t, c.MonthlyFee.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, customer.StatusActive, c.Status)

	_, err = f.packages.UpdatePackage(ctx, pkg.ID, &packages.UpdatePackageRequest{
		Name: pkg.Name, Speed: pkg.Speed, Price: price(150000),
	})
	require.NoError(t, err)

	got, err := f.customers.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.MonthlyFee.Equal(decimal.NewFromInt(100000)), "fee changed to %s", got.MonthlyFee)

	assert.Equal(t, 1, f.events.count(ws.EventCustomerCreated))
	assert.Equal(t, 1, f.events.count(ws.EventPackageUpdated))
}

func TestPackageReassignmentResnapshotsFee(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	basic := f.createPackage(t, 100000)
	premium := f.createPackage(t, 250000)

	c, err := f.customers.CreateCustomer(ctx, &customer.CreateCustomerRequest{
		Name: "Sari", Phone: "0813", Address: "Jl. Sudirman 2", PackageID: basic.ID,
	})
	require.NoError(t, err)

	name := "Sari W."
	updated, err := f.customers.UpdateCustomer(ctx, c.ID, &customer.UpdateCustomerRequest{Name: &name})
	require.NoError(t, err)
	assert.True(t, updated.MonthlyFee.Equal(decimal.NewFromInt(100000)))

	updated, err = f.customers.UpdateCustomer(ctx, c.ID, &customer.UpdateCustomerRequest{PackageID: &premium.ID})
	require.NoError(t, err)
	assert.Equal(t, premium.ID, updated.PackageID)
	assert.True(t, updated.MonthlyFee.Equal(decimal.NewFromInt(250000)))
	assert.Equal(t, "Sari W.", updated.Name)
}

func TestCreateCustomerValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.customers.CreateCustomer(ctx, &customer.CreateCustomerRequest{Name: "X", Phone: "1"})
	assert.ErrorIs(t, err, xerrors.ErrValidation)

	_, err = f.customers.CreateCustomer(ctx, &customer.CreateCustomerRequest{
		Name: "X", Phone: "1", Address: "A", PackageID: 42,
	})
	require.ErrorIs(t, err, xerrors.ErrNotFound)
	assert.Contains(t, err.Error(), "Package not found")

	pkg := f.createPackage(t, 1)
	_, err = f.customers.CreateCustomer(ctx, &customer.CreateCustomerRequest{
		Name: "X", Phone: "1", Address: "A", PackageID: pkg.ID, Status: "suspended",
	})
	assert.ErrorIs(t, err, xerrors.ErrValidation)
	assert.Zero(t, f.events.count(ws.EventCustomerCreated))
}

func TestUpdateAndDeleteMissingCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	name := "Nobody"
	_, err := f.customers.UpdateCustomer(ctx, 99, &customer.UpdateCustomerRequest{Name: &name})
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
	assert.ErrorIs(t, f.customers.DeleteCustomer(ctx, 99), xerrors.ErrNotFound)
	assert.Zero(t, f.events.count(ws.EventCustomerDeleted))
}

func TestListCustomersPagination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	pkg := f.createPackage(t, 100000)

	for i := 0; i < 25; i++ {
		_, err := f.customers.CreateCustomer(ctx, &customer.CreateCustomerRequest{
			Name: fmt.Sprintf("Customer %02d", i), Phone: "08", Address: "Addr", PackageID: pkg.ID,
		})
		require.NoError(t, err)
	}

	page, err := f.customers.ListCustomers(ctx, &customer.ListFilters{Params: pagination.Params{Page: 2, Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, page.Data, 10)
	assert.EqualValues(t, 25, page.Pagination.Total)
	assert.EqualValues(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 2, page.Pagination.Page)

	page, err = f.customers.ListCustomers(ctx, &customer.ListFilters{Params: pagination.Params{Page: 3, Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, page.Data, 5)

	page, err = f.customers.ListCustomers(ctx, &customer.ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, pagination.DefaultLimit, page.Pagination.Limit)
	assert.Equal(t, 1, page.Pagination.Page)

	_, err = f.customers.ListCustomers(ctx, &customer.ListFilters{Status: "gone"})
	assert.ErrorIs(t, err, xerrors.ErrValidation)
}
