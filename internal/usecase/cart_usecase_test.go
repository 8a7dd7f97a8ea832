package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type CartCartRepoMock struct{ mock.Mock }

func (m *CartCartRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]model.CartLine)
	return lines, args.Error(1)
}

func (m *CartCartRepoMock) UpsertLine(ctx context.Context, userID int64, productID int64, addQty int64) (model.CartLine, error) {
	args := m.Called(ctx, userID, productID, addQty)
	l, _ := args.Get(0).(model.CartLine)
	return l, args.Error(1)
}

func (m *CartCartRepoMock) UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) (model.CartLine, error) {
	args := m.Called(ctx, userID, productID, qty)
	l, _ := args.Get(0).(model.CartLine)
	return l, args.Error(1)
}

func (m *CartCartRepoMock) DeleteLine(ctx context.Context, userID int64, productID int64) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *CartCartRepoMock) ClearByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CartProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Update(ctx context.Context, id int64, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Count(ctx context.Context) (int64, error) {
	panic("not used in CartUsecase tests")
}

func TestCartUsecase_AddToCart_InvalidProduct(t *testing.T) {
	cRepo := new(CartCartRepoMock)
	pRepo := new(CartProductRepoMock)
	uc := usecase.NewCartUsecase(cRepo, pRepo)

	pRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 99, Quantity: 1})
	assertErrContains(t, err, "invalid product")
}

// 既存数量＋追加分が在庫を超えたら拒否
func TestCartUsecase_AddToCart_StockExceeded(t *testing.T) {
	cRepo := new(CartCartRepoMock)
	pRepo := new(CartProductRepoMock)
	uc := usecase.NewCartUsecase(cRepo, pRepo)

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Name: "Headphones", Available: 5, Price: decimal.NewFromInt(10),
	}, nil)
	cRepo.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartLine{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 4},
	}, nil)

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 10, Quantity: 2})
	assertErrContains(t, err, "stock exceeded")

	cRepo.AssertNotCalled(t, "UpsertLine", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 同一商品は行が増えず数量だけ増える
func TestCartUsecase_AddToCart_MergesQuantity(t *testing.T) {
	cRepo := new(CartCartRepoMock)
	pRepo := new(CartProductRepoMock)
	uc := usecase.NewCartUsecase(cRepo, pRepo)

	p := model.Product{ID: 10, Name: "Headphones", Available: 10, Price: decimal.RequireFromString("24.99")}
	pRepo.On("FindByID", mock.Anything, int64(10)).Return(p, nil)

	// 1回目のList: 追加前（qty 2）、2回目: レスポンス構築（qty 5）
	cRepo.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartLine{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 2},
	}, nil).Once()
	cRepo.On("UpsertLine", mock.Anything, int64(1), int64(10), int64(3)).Return(model.CartLine{
		ID: 1, UserID: 1, ProductID: 10, Quantity: 5,
	}, nil)
	cRepo.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartLine{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 5},
	}, nil).Once()

	out, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 10, Quantity: 3})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(5), out.Items[0].Quantity)
	assert.True(t, out.Total.Equal(decimal.RequireFromString("124.95")))

	cRepo.AssertExpectations(t)
}

func TestCartUsecase_UpdateQuantity_StockExceeded(t *testing.T) {
	cRepo := new(CartCartRepoMock)
	pRepo := new(CartProductRepoMock)
	uc := usecase.NewCartUsecase(cRepo, pRepo)

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Available: 3,
	}, nil)

	_, err := uc.UpdateQuantity(context.Background(), 1, 10, usecase.UpdateCartLineInput{Quantity: 4})
	assertErrContains(t, err, "stock exceeded")
}

// 削除済み商品の明細はレスポンスから消える
func TestCartUsecase_GetCart_SkipsDeletedProducts(t *testing.T) {
	cRepo := new(CartCartRepoMock)
	pRepo := new(CartProductRepoMock)
	uc := usecase.NewCartUsecase(cRepo, pRepo)

	cRepo.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartLine{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 1},
		{ID: 2, UserID: 1, ProductID: 20, Quantity: 2},
	}, nil)
	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Name: "A", Price: decimal.NewFromInt(10),
	}, nil)
	pRepo.On("FindByID", mock.Anything, int64(20)).Return(model.Product{}, repo.ErrNotFound)

	out, err := uc.GetCart(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Items))
	assert.True(t, out.Total.Equal(decimal.NewFromInt(10)))
}
