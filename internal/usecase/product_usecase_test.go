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

type ProdProductRepoMock struct{ mock.Mock }

func (m *ProdProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProdProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProdProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProdProductRepoMock) Update(ctx context.Context, id int64, p model.Product) (model.Product, error) {
	args := m.Called(ctx, id, p)
	updated, _ := args.Get(0).(model.Product)
	return updated, args.Error(1)
}

func (m *ProdProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProdProductRepoMock) Count(ctx context.Context) (int64, error) {
	panic("not used in ProductUsecase tests")
}

func validProductInput() usecase.ProductInput {
	return usecase.ProductInput{
		Name:         "Wireless Headphones",
		Image:        "/uploads/a.png",
		Price:        decimal.RequireFromString("24.99"),
		Description:  "Over-ear wireless headphones",
		Category:     "headphones",
		Available:    10,
		Brand:        "Sony",
		Model:        "WH-1000",
		Connectivity: "wireless",
	}
}

func TestProductUsecase_Detail_NotFound(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.Detail(context.Background(), 99)
	assertErrContains(t, err, "product not found")
}

func TestProductUsecase_Create_Validation(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock))

	in := validProductInput()
	in.Name = "  "
	_, err := uc.Create(context.Background(), in)
	assertErrContains(t, err, "name is required")

	in = validProductInput()
	in.Category = "laptops"
	_, err = uc.Create(context.Background(), in)
	assertErrContains(t, err, "invalid category")

	in = validProductInput()
	in.Connectivity = "telepathy"
	_, err = uc.Create(context.Background(), in)
	assertErrContains(t, err, "invalid connectivity")

	in = validProductInput()
	in.Price = decimal.RequireFromString("-1")
	_, err = uc.Create(context.Background(), in)
	assertErrContains(t, err, "invalid price")
}

// 省略可能な項目にはデフォルトが入る
func TestProductUsecase_Create_AppliesDefaults(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Discount == "0%" && p.Color == "Black" && p.Features != nil
	})).Return(model.Product{ID: 1}, nil)

	in := validProductInput()
	in.Discount = ""
	in.Color = ""
	in.Features = nil

	created, err := uc.Create(context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_Update_NotFound(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("Update", mock.Anything, int64(99), mock.AnythingOfType("model.Product")).
		Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.Update(context.Background(), 99, validProductInput())
	assertErrContains(t, err, "product not found")
}

// 削除は画像パスを返す（ファイル掃除はhandler側）
func TestProductUsecase_Delete_ReturnsImagePath(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, Image: "/uploads/old.png",
	}, nil)
	pRepo.On("SoftDelete", mock.Anything, int64(1)).Return(nil)

	imagePath, err := uc.Delete(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "/uploads/old.png", imagePath)

	pRepo.AssertExpectations(t)
}
