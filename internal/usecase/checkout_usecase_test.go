package usecase_test

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type CkCartRepoMock struct{ mock.Mock }

func (m *CkCartRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]model.CartLine)
	return lines, args.Error(1)
}

func (m *CkCartRepoMock) UpsertLine(ctx context.Context, userID int64, productID int64, addQty int64) (model.CartLine, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CkCartRepoMock) UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) (model.CartLine, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CkCartRepoMock) DeleteLine(ctx context.Context, userID int64, productID int64) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CkCartRepoMock) ClearByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type CkInventoryRepoMock struct{ mock.Mock }

func (m *CkInventoryRepoMock) DecrementStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *CkInventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	panic("not used in CheckoutUsecase tests")
}

type CkOrderRepoMock struct{ mock.Mock }

func (m *CkOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CkOrderRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CkOrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CkOrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CkOrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CkOrderRepoMock) CountAndRevenue(ctx context.Context) (int64, decimal.Decimal, error) {
	panic("not used in CheckoutUsecase tests")
}

type CkOrderItemRepoMock struct{ mock.Mock }

func (m *CkOrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *CkOrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	panic("not used in CheckoutUsecase tests")
}

type CkPaymentClientMock struct{ mock.Mock }

func (m *CkPaymentClientMock) CreateIntent(ctx context.Context, amountMinor int64, currency string) (payment.Intent, error) {
	args := m.Called(ctx, amountMinor, currency)
	in, _ := args.Get(0).(payment.Intent)
	return in, args.Error(1)
}

func (m *CkPaymentClientMock) RetrieveIntent(ctx context.Context, intentID string) (payment.Intent, error) {
	args := m.Called(ctx, intentID)
	in, _ := args.Get(0).(payment.Intent)
	return in, args.Error(1)
}

// fnにそのままmockのreposを渡すTxManager
type CkTxReposMock struct {
	orders     *CkOrderRepoMock
	orderItems *CkOrderItemRepoMock
	carts      *CkCartRepoMock
	inventory  *CkInventoryRepoMock
}

func (r *CkTxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *CkTxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *CkTxReposMock) Carts() repo.CartRepository           { return r.carts }
func (r *CkTxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *CkTxReposMock) Products() repo.ProductRepository     { return nil }

type CkTxManagerMock struct {
	repos *CkTxReposMock
}

func (m *CkTxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

// テスト対象とmock一式を組み立てる
type checkoutFixture struct {
	uc      *usecase.CheckoutUsecase
	cart    *CkCartRepoMock
	inv     *CkInventoryRepoMock
	orders  *CkOrderRepoMock
	items   *CkOrderItemRepoMock
	payment *CkPaymentClientMock
}

func newCheckoutFixture(withPayment bool) *checkoutFixture {
	f := &checkoutFixture{
		cart:    new(CkCartRepoMock),
		inv:     new(CkInventoryRepoMock),
		orders:  new(CkOrderRepoMock),
		items:   new(CkOrderItemRepoMock),
		payment: new(CkPaymentClientMock),
	}

	tx := &CkTxManagerMock{repos: &CkTxReposMock{
		orders:     f.orders,
		orderItems: f.items,
		carts:      f.cart,
		inventory:  f.inv,
	}}

	var pc payment.Client
	if withPayment {
		pc = f.payment
	}

	f.uc = usecase.NewCheckoutUsecase(tx, f.cart, f.inv, pc, nopLogger{})
	return f
}

func validAddress() model.ShippingAddress {
	return model.ShippingAddress{
		FullName:   "Taro Yamada",
		Address:    "1-2-3 Chiyoda",
		City:       "Tokyo",
		PostalCode: "100-0001",
		Phone:      "03-1234-5678",
	}
}

// =====================
// CreatePaymentIntent
// =====================

func TestCheckoutUsecase_CreatePaymentIntent_Unauthorized(t *testing.T) {
	f := newCheckoutFixture(true)

	_, err := f.uc.CreatePaymentIntent(context.Background(), 0, usecase.CreateIntentInput{
		Amount: decimal.NewFromInt(10),
	})
	assertErrContains(t, err, "unauthorized")
}

func TestCheckoutUsecase_CreatePaymentIntent_PaymentUnavailable(t *testing.T) {
	f := newCheckoutFixture(false)

	_, err := f.uc.CreatePaymentIntent(context.Background(), 1, usecase.CreateIntentInput{
		Amount: decimal.NewFromInt(10),
	})
	assertErrContains(t, err, "payment unavailable")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 503, he.Status)
}

func TestCheckoutUsecase_CreatePaymentIntent_InvalidAmount(t *testing.T) {
	f := newCheckoutFixture(true)

	_, err := f.uc.CreatePaymentIntent(context.Background(), 1, usecase.CreateIntentInput{
		Amount: decimal.Zero,
	})
	assertErrContains(t, err, "invalid amount")
}

func TestCheckoutUsecase_CreatePaymentIntent_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(true)

	f.cart.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartLine{}, nil)

	_, err := f.uc.CreatePaymentIntent(context.Background(), 1, usecase.CreateIntentInput{
		Amount: decimal.NewFromFloat(9.99),
	})
	assertErrContains(t, err, "cart empty")
}

// 端数の変換は四捨五入（19.999 -> 2000セント）
func TestCheckoutUsecase_CreatePaymentIntent_RoundsMinorUnits(t *testing.T) {
	f := newCheckoutFixture(true)

	f.cart.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartLine{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 1},
	}, nil)

	f.payment.On("CreateIntent", mock.Anything, int64(2000), "usd").Return(payment.Intent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret",
		Amount:       2000,
		Status:       "requires_payment_method",
	}, nil)

	out, err := f.uc.CreatePaymentIntent(context.Background(), 1, usecase.CreateIntentInput{
		Amount: decimal.RequireFromString("19.999"),
	})
	assert.NoError(t, err)
	assert.Equal(t, "pi_123", out.PaymentIntentID)
	assert.Equal(t, "pi_123_secret", out.ClientSecret)
	assert.Equal(t, int64(2000), out.Amount)

	f.payment.AssertExpectations(t)
}

func TestCheckoutUsecase_CreatePaymentIntent_ProviderError(t *testing.T) {
	f := newCheckoutFixture(true)

	f.cart.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartLine{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 1},
	}, nil)
	f.payment.On("CreateIntent", mock.Anything, int64(1000), "usd").
		Return(payment.Intent{}, errors.New("boom"))

	_, err := f.uc.CreatePaymentIntent(context.Background(), 1, usecase.CreateIntentInput{
		Amount: decimal.NewFromInt(10),
	})
	assertErrContains(t, err, "payment provider error")

	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, 502, he.Status)
}

// =====================
// ConfirmAndFinalize
// =====================

func TestCheckoutUsecase_Confirm_PaymentUnavailable(t *testing.T) {
	f := newCheckoutFixture(false)

	_, err := f.uc.ConfirmAndFinalize(context.Background(), 1, usecase.ConfirmInput{
		PaymentIntentID: "pi_1",
		Items:           []usecase.ConfirmItemInput{{ProductID: 1, Quantity: 1}},
		TotalAmount:     decimal.NewFromInt(10),
		ShippingAddress: validAddress(),
	})
	assertErrContains(t, err, "payment unavailable")
}

func TestCheckoutUsecase_Confirm_MissingAddressField(t *testing.T) {
	f := newCheckoutFixture(true)

	addr := validAddress()
	addr.City = "   "

	_, err := f.uc.ConfirmAndFinalize(context.Background(), 1, usecase.ConfirmInput{
		PaymentIntentID: "pi_1",
		Items:           []usecase.ConfirmItemInput{{ProductID: 1, Quantity: 1}},
		TotalAmount:     decimal.NewFromInt(10),
		ShippingAddress: addr,
	})
	assertErrContains(t, err, "city is required")
}

// succeeded以外は402。注文もカート削除も在庫減算も起きない
func TestCheckoutUsecase_Confirm_PaymentNotCompleted(t *testing.T) {
	f := newCheckoutFixture(true)

	f.payment.On("RetrieveIntent", mock.Anything, "pi_1").Return(payment.Intent{
		ID:     "pi_1",
		Status: "requires_action",
	}, nil)

	_, err := f.uc.ConfirmAndFinalize(context.Background(), 1, usecase.ConfirmInput{
		PaymentIntentID: "pi_1",
		Items:           []usecase.ConfirmItemInput{{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10)}},
		TotalAmount:     decimal.NewFromInt(10),
		ShippingAddress: validAddress(),
	})
	assertErrContains(t, err, "payment not completed")

	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, 402, he.Status)

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.cart.AssertNotCalled(t, "ClearByUserID", mock.Anything, mock.Anything)
	f.inv.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_Confirm_ProviderError(t *testing.T) {
	f := newCheckoutFixture(true)

	f.payment.On("RetrieveIntent", mock.Anything, "pi_1").
		Return(payment.Intent{}, errors.New("network"))

	_, err := f.uc.ConfirmAndFinalize(context.Background(), 1, usecase.ConfirmInput{
		PaymentIntentID: "pi_1",
		Items:           []usecase.ConfirmItemInput{{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10)}},
		TotalAmount:     decimal.NewFromInt(10),
		ShippingAddress: validAddress(),
	})
	assertErrContains(t, err, "payment provider error")

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_Confirm_Success(t *testing.T) {
	f := newCheckoutFixture(true)

	f.payment.On("RetrieveIntent", mock.Anything, "pi_1").Return(payment.Intent{
		ID:     "pi_1",
		Amount: 6998,
		Status: payment.StatusSucceeded,
	}, nil)

	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 1 &&
			o.Status == model.OrderStatusProcessing &&
			o.PaymentStatus == model.PaymentStatusPaid &&
			o.PaymentIntentID == "pi_1" &&
			o.TotalAmount.Equal(decimal.RequireFromString("69.98"))
	})).Return(int64(55), nil)

	f.items.On("CreateBulk", mock.Anything, int64(55), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2
	})).Return(nil)

	f.cart.On("ClearByUserID", mock.Anything, int64(1)).Return(nil)
	f.inv.On("DecrementStock", mock.Anything, int64(10), int64(2)).Return(nil)
	f.inv.On("DecrementStock", mock.Anything, int64(20), int64(1)).Return(nil)

	out, err := f.uc.ConfirmAndFinalize(context.Background(), 1, usecase.ConfirmInput{
		PaymentIntentID: "pi_1",
		Items: []usecase.ConfirmItemInput{
			{ProductID: 10, Name: "Headphones", Price: decimal.RequireFromString("24.99"), Quantity: 2, Image: "/uploads/a.png"},
			{ProductID: 20, Name: "Earbuds", Price: decimal.RequireFromString("20.00"), Quantity: 1, Image: "/uploads/b.png"},
		},
		TotalAmount:     decimal.RequireFromString("69.98"),
		ShippingAddress: validAddress(),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(55), out.OrderID)
	assert.Equal(t, 2, out.ItemCount)
	assert.Equal(t, "processing", out.Status)
	assert.Equal(t, "paid", out.PaymentStatus)
	assert.True(t, out.TotalAmount.Equal(decimal.RequireFromString("69.98")))

	f.orders.AssertExpectations(t)
	f.items.AssertExpectations(t)
	f.cart.AssertExpectations(t)
	f.inv.AssertExpectations(t)
}

// カート削除や在庫減算が失敗しても注文は成立する
func TestCheckoutUsecase_Confirm_BestEffortStepsDoNotFail(t *testing.T) {
	f := newCheckoutFixture(true)

	f.payment.On("RetrieveIntent", mock.Anything, "pi_1").Return(payment.Intent{
		ID:     "pi_1",
		Status: payment.StatusSucceeded,
	}, nil)

	f.orders.On("Create", mock.Anything, mock.Anything).Return(int64(7), nil)
	f.items.On("CreateBulk", mock.Anything, int64(7), mock.Anything).Return(nil)

	f.cart.On("ClearByUserID", mock.Anything, int64(1)).Return(errors.New("db down"))
	f.inv.On("DecrementStock", mock.Anything, int64(10), int64(1)).Return(errors.New("db down"))
	f.inv.On("DecrementStock", mock.Anything, int64(20), int64(3)).Return(nil)

	out, err := f.uc.ConfirmAndFinalize(context.Background(), 1, usecase.ConfirmInput{
		PaymentIntentID: "pi_1",
		Items: []usecase.ConfirmItemInput{
			{ProductID: 10, Name: "A", Price: decimal.NewFromInt(5), Quantity: 1},
			{ProductID: 20, Name: "B", Price: decimal.NewFromInt(5), Quantity: 3},
		},
		TotalAmount:     decimal.NewFromInt(20),
		ShippingAddress: validAddress(),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.OrderID)

	// 1行目が失敗しても2行目の減算は実行される
	f.inv.AssertExpectations(t)
}

func TestCheckoutUsecase_Confirm_OrderCreateFails(t *testing.T) {
	f := newCheckoutFixture(true)

	f.payment.On("RetrieveIntent", mock.Anything, "pi_1").Return(payment.Intent{
		ID:     "pi_1",
		Status: payment.StatusSucceeded,
	}, nil)

	f.orders.On("Create", mock.Anything, mock.Anything).Return(int64(0), errors.New("insert failed"))

	_, err := f.uc.ConfirmAndFinalize(context.Background(), 1, usecase.ConfirmInput{
		PaymentIntentID: "pi_1",
		Items:           []usecase.ConfirmItemInput{{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10)}},
		TotalAmount:     decimal.NewFromInt(10),
		ShippingAddress: validAddress(),
	})
	assertErrContains(t, err, "db error")

	f.cart.AssertNotCalled(t, "ClearByUserID", mock.Anything, mock.Anything)
	f.inv.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
}
