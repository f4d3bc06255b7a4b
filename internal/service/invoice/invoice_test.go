package invoice

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"isp-billing-service/internal/domain/customer"
	"isp-billing-service/internal/domain/invoice"
	"isp-billing-service/internal/domain/setting"
	ws "isp-billing-service/internal/domain/websocket"
	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memInvoices struct {
	rows map[string]invoice.Invoice
	// runs between the service's read and its write
	beforeUpdate func()
}

func (m *memInvoices) List(_ context.Context, f *invoice.ListFilters) ([]invoice.Invoice, int64, error) {
	out := []invoice.Invoice{}
	for _, inv := range m.rows {
		if f.Status == "" || inv.Status == f.Status {
			out = append(out, inv)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memInvoices) FindByID(_ context.Context, id string) (*invoice.Invoice, error) {
	inv, ok := m.rows[id]
	if !ok {
		return nil, xerrors.NotFound("Invoice")
	}
	return &inv, nil
}

func (m *memInvoices) Create(_ context.Context, inv *invoice.Invoice) error {
	if _, dup := m.rows[inv.ID]; dup {
		return xerrors.Conflict("Invoice already exists")
	}
	inv.CreatedAt = time.Now()
	m.rows[inv.ID] = *inv
	return nil
}

func (m *memInvoices) Update(_ context.Context, id, status string, notes *string) (*invoice.Invoice, error) {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	inv, ok := m.rows[id]
	if !ok {
		return nil, xerrors.NotFound("Invoice")
	}
	if err := invoice.CheckTransition(inv.Status, status); err != nil {
		return nil, err
	}
	inv.Status = status
	if notes != nil {
		inv.Notes = notes
	}
	m.rows[id] = inv
	return &inv, nil
}

func (m *memInvoices) Delete(_ context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return xerrors.NotFound("Invoice")
	}
	delete(m.rows, id)
	return nil
}

func (m *memInvoices) MarkOverdue(context.Context, time.Time) ([]invoice.Invoice, error) {
	return nil, nil
}

type customers map[int64]customer.Customer

func (c customers) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	row, ok := c[id]
	if !ok {
		return nil, xerrors.NotFound("Customer")
	}
	return &row, nil
}

type fixedSettings struct{ prefix string }

func (f fixedSettings) InvoicePrefix(context.Context) string { return f.prefix }
func (fixedSettings) DueDays(context.Context) int { return 7 }
func (fixedSettings) Currency(context.Context) string { return "IDR" }
func (fixedSettings) Profile(context.Context) (*setting.CompanyProfile, error) {
	return &setting.CompanyProfile{CompanyName: "Nusantara Net"}, nil
}

type events struct{ got []ws.EventType }

func (e *events) Publish(event ws.EventType, _ interface{}) { e.got = append(e.got, event) }

func strp(s string) *string { return &s }

func newService() (*InvoiceService, *memInvoices, *events) {
	repo := &memInvoices{rows: map[string]invoice.Invoice{}}
	speed := "20 Mbps"
	pkgName := "Home 20"
	cs := customers{
		1: {ID: 1, Name: "Budi", Address: "Jl. Merdeka 1", Phone: "0812", PackageID: 3,
			MonthlyFee: decimal.NewFromInt(150000), PackageName: &pkgName, PackageSpeed: &speed},
	}
	ev := &events{}
	svc := NewInvoiceService(repo, cs, fixedSettings{prefix: "NET-"}, nil, ev, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, repo, ev
}

func TestCreateInvoiceDefaults(t *testing.T) {
	svc, _, ev := newService()

	inv, err := svc.CreateInvoice(context.Background(), &invoice.CreateInvoiceRequest{CustomerID: 1})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(inv.ID, "NET-"), inv.ID)
	assert.Equal(t, invoice.StatusPending, inv.Status)
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(150000)))
	require.NotNil(t, inv.PackageID)
	assert.EqualValues(t, 3, *inv.PackageID)
	assert.Equal(t, "2024-03-08", inv.DueDate.Format(invoice.DateLayout))
	assert.Equal(t, []ws.EventType{ws.EventInvoiceCreated}, ev.got)
}

func TestCreateInvoiceExplicitFields(t *testing.T) {
	svc, _, _ := newService()
	amount := decimal.NewFromInt(99000)

	inv, err := svc.CreateInvoice(context.Background(), &invoice.CreateInvoiceRequest{
		CustomerID: 1, Amount: &amount, DueDate: "2024-04-15", Notes: strp("prorated"),
	})
	require.NoError(t, err)
	assert.True(t, inv.Amount.Equal(amount))
	assert.Equal(t, "2024-04-15", inv.DueDate.Format(invoice.DateLayout))
}

func TestCreateInvoiceIdsAreUnique(t *testing.T) {
	svc, repo, _ := newService()
	for i := 0; i < 50; i++ {
		_, err := svc.CreateInvoice(context.Background(), &invoice.CreateInvoiceRequest{CustomerID: 1})
		require.NoError(t, err)
	}
	assert.Len(t, repo.rows, 50)
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc, _, ev := newService()
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, &invoice.CreateInvoiceRequest{CustomerID: 42})
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	_, err = svc.CreateInvoice(ctx, &invoice.CreateInvoiceRequest{CustomerID: 1, DueDate: "15/04/2024"})
	assert.ErrorIs(t, err, xerrors.ErrValidation)

	neg := decimal.NewFromInt(-5)
	_, err = svc.CreateInvoice(ctx, &invoice.CreateInvoiceRequest{CustomerID: 1, Amount: &neg})
	assert.ErrorIs(t, err, xerrors.ErrValidation)
	assert.Empty(t, ev.got)
}

func TestUpdateInvoiceTransitions(t *testing.T) {
	svc, repo, ev := newService()
	ctx := context.Background()
	repo.rows["NET-1"] = invoice.Invoice{ID: "NET-1", CustomerID: 1, Status: invoice.StatusPending}
	repo.rows["NET-2"] = invoice.Invoice{ID: "NET-2", CustomerID: 1, Status: invoice.StatusPaid}

	updated, err := svc.UpdateInvoice(ctx, "NET-1", &invoice.UpdateInvoiceRequest{Status: "cancelled", Notes: strp("moved away")})
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusCancelled, updated.Status)
	assert.Equal(t, "moved away", *updated.Notes)

	_, err = svc.UpdateInvoice(ctx, "NET-1", &invoice.UpdateInvoiceRequest{Status: "paid"})
	assert.ErrorIs(t, err, xerrors.ErrValidation)

	_, err = svc.UpdateInvoice(ctx, "NET-2", &invoice.UpdateInvoiceRequest{Status: "pending"})
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	_, err = svc.UpdateInvoice(ctx, "NET-2", &invoice.UpdateInvoiceRequest{Status: "paid", Notes: strp("receipt sent")})
	assert.NoError(t, err)

	_, err = svc.UpdateInvoice(ctx, "missing", &invoice.UpdateInvoiceRequest{Status: "pending"})
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	_, err = svc.UpdateInvoice(ctx, "NET-1", &invoice.UpdateInvoiceRequest{Status: "void"})
	assert.ErrorIs(t, err, xerrors.ErrValidation)

	assert.Equal(t, []ws.EventType{ws.EventInvoiceUpdated, ws.EventInvoiceUpdated}, ev.got)
}

func TestUpdateInvoiceLosesToConcurrentPayment(t *testing.T) {
	for _, next := range []string{invoice.StatusCancelled, invoice.StatusPending, invoice.StatusOverdue} {
		t.Run(next, func(t *testing.T) {
			svc, repo, ev := newService()
			repo.rows["NET-1"] = invoice.Invoice{ID: "NET-1", CustomerID: 1, Status: invoice.StatusPending}
			repo.beforeUpdate = func() {
				inv := repo.rows["NET-1"]
				inv.Status = invoice.StatusPaid
				repo.rows["NET-1"] = inv
			}

			_, err := svc.UpdateInvoice(context.Background(), "NET-1", &invoice.UpdateInvoiceRequest{Status: next})
			assert.ErrorIs(t, err, xerrors.ErrConflict)
			assert.Equal(t, invoice.StatusPaid, repo.rows["NET-1"].Status)
			assert.Empty(t, ev.got)
		})
	}
}

func TestCheckTransition(t *testing.T) {
	assert.NoError(t, invoice.CheckTransition(invoice.StatusPending, invoice.StatusOverdue))
	assert.NoError(t, invoice.CheckTransition(invoice.StatusOverdue, invoice.StatusCancelled))
	assert.NoError(t, invoice.CheckTransition(invoice.StatusPaid, invoice.StatusPaid))
	assert.ErrorIs(t, invoice.CheckTransition(invoice.StatusPaid, invoice.StatusCancelled), xerrors.ErrConflict)
	assert.ErrorIs(t, invoice.CheckTransition(invoice.StatusPending, invoice.StatusPaid), xerrors.ErrValidation)
}

func TestDeleteInvoice(t *testing.T) {
	svc, repo, ev := newService()
	repo.rows["NET-1"] = invoice.Invoice{ID: "NET-1"}

	require.NoError(t, svc.DeleteInvoice(context.Background(), "NET-1"))
	assert.ErrorIs(t, svc.DeleteInvoice(context.Background(), "NET-1"), xerrors.ErrNotFound)
	assert.Equal(t, []ws.EventType{ws.EventInvoiceDeleted}, ev.got)
}

func TestRenderPDF(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	inv, err := svc.CreateInvoice(ctx, &invoice.CreateInvoiceRequest{CustomerID: 1})
	require.NoError(t, err)

	out, got, err := svc.RenderPDF(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	_, _, err = svc.RenderPDF(ctx, "nope")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
