package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tsAt(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

// --- Mock implementation ---

type mockOrderRepo struct {
	lastParams *PlaceParams
	placeErr   error
	seq        int64

	orders map[int64]*Order
}

func (m *mockOrderRepo) Place(_ context.Context, p PlaceParams) (*Order, error) {
	if m.placeErr != nil {
		return nil, m.placeErr
	}
	m.lastParams = &p
	m.seq++
	now := tsAt(2026, 8, 30)
	return &Order{
		ID:             m.seq,
		OrderNumber:    FormatOrderNumber(now, m.seq),
		CustomerName:   p.Customer.FirstName + " " + p.Customer.LastName,
		CustomerEmail:  p.Customer.Email,
		Subtotal:       p.Totals.Subtotal,
		Tax:            p.Totals.Tax,
		Shipping:       p.Totals.Shipping,
		Total:          p.Totals.Total,
		ItemCount:      len(p.Lines),
		DeliveryStatus: StatusNew,
		CreatedAt:      now,
	}, nil
}

func (m *mockOrderRepo) List(_ context.Context, _ ListFilter) ([]Order, error) { return nil, nil }

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*Order, []Line, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	return o, nil, nil
}

func (m *mockOrderRepo) Progress(_ context.Context, id int64, p ProgressParams) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	next, err := o.DeliveryStatus.Next()
	if err != nil {
		return nil, err
	}
	if next == StatusDeliveryBooked && (p.Courier == "" || p.TrackingNumber == "") {
		return nil, ErrCourierRequired
	}
	o.DeliveryStatus = next
	return o, nil
}

func validRequest() CheckoutRequest {
	return CheckoutRequest{
		Customer: CustomerInfo{
			FirstName:        "Rory",
			LastName:         "Macdonald",
			Email:            "rory@example.com",
			ShippingPostcode: "SW1A 1AA",
		},
		Lines: []Line{
			{ProductName: "Pro V1 Golf Balls (Dozen)", SKU: "TT-PROV1-DZ", UnitPrice: dec("16.99"), Quantity: 2},
		},
		SessionID: "sess-1",
	}
}

// --- Checkout tests ---

func TestCheckout_EmptyCart(t *testing.T) {
	svc := NewService(&mockOrderRepo{})

	req := validRequest()
	req.Lines = nil
	_, err := svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_MissingCustomer(t *testing.T) {
	svc := NewService(&mockOrderRepo{})

	req := validRequest()
	req.Customer.Email = ""
	_, err := svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, ErrMissingCustomer)

	req = validRequest()
	req.Customer.FirstName = ""
	req.Customer.LastName = ""
	_, err = svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, ErrMissingCustomer)
}

func TestCheckout_CompanyNameSatisfiesCustomerCheck(t *testing.T) {
	svc := NewService(&mockOrderRepo{})

	req := validRequest()
	req.Customer.FirstName = ""
	req.Customer.LastName = ""
	req.Customer.CompanyName = "Fairway Golf Ltd"
	_, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
}

func TestCheckout_InvalidQuantity(t *testing.T) {
	svc := NewService(&mockOrderRepo{})

	req := validRequest()
	req.Lines[0].Quantity = 0
	_, err := svc.Checkout(context.Background(), req)

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
}

func TestCheckout_ComputesTotals(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(repo)

	res, err := svc.Checkout(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, res.Totals.Subtotal.Equal(dec("33.98")))
	assert.True(t, res.Totals.Tax.Equal(dec("6.80")))
	assert.True(t, res.Totals.Shipping.Equal(dec("5")))
	assert.True(t, res.Totals.Total.Equal(dec("45.78")))
	assert.Equal(t, "AST-202608-0001", res.Order.OrderNumber)

	// Line subtotals are filled in before persisting.
	require.Len(t, repo.lastParams.Lines, 1)
	assert.True(t, repo.lastParams.Lines[0].LineSubtotal.Equal(dec("33.98")))
	assert.Equal(t, "sess-1", repo.lastParams.SessionID)
}

func TestCheckout_TrustsSuppliedTotals(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(repo)

	req := validRequest()
	req.Totals = &Totals{
		Subtotal: dec("33.98"),
		Tax:      dec("0"),
		Shipping: dec("0"),
		Total:    dec("33.98"),
	}
	res, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, res.Totals.Tax.IsZero())
	assert.True(t, res.Totals.Total.Equal(dec("33.98")))
}

// --- State machine tests ---

func TestDeliveryStatusNext_LinearPath(t *testing.T) {
	path := []DeliveryStatus{StatusNew, StatusConfirmed, StatusDeliveryBooked, StatusInTransit, StatusDelivered}
	for i := 0; i < len(path)-1; i++ {
		next, err := path[i].Next()
		require.NoError(t, err)
		assert.Equal(t, path[i+1], next)
	}
}

func TestDeliveryStatusNext_DeliveredIsTerminal(t *testing.T) {
	_, err := StatusDelivered.Next()

	var itErr *InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
	assert.Equal(t, StatusDelivered, itErr.From)
}

func TestDeliveryStatusNext_UnknownStatus(t *testing.T) {
	_, err := DeliveryStatus("cancelled").Next()

	var itErr *InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
}

func TestProgress_BookingRequiresCourier(t *testing.T) {
	repo := &mockOrderRepo{orders: map[int64]*Order{
		7: {ID: 7, DeliveryStatus: StatusConfirmed},
	}}
	svc := NewService(repo)

	_, err := svc.Progress(context.Background(), 7, ProgressParams{})
	require.ErrorIs(t, err, ErrCourierRequired)

	o, err := svc.Progress(context.Background(), 7, ProgressParams{Courier: "DPD", TrackingNumber: "TRK123"})
	require.NoError(t, err)
	assert.Equal(t, StatusDeliveryBooked, o.DeliveryStatus)
}
