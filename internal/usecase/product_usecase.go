package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// GET /products の入力DTO
type ListProductsInput struct {
	Category string
	Brand    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Search   string
}

// 商品の作成・更新入力（画像パスはhandlerがアップロード後に入れる）
type ProductInput struct {
	Name              string
	Image             string
	Price             decimal.Decimal
	Description       string
	Category          string
	Available         int64
	Discount          string
	Brand             string
	Model             string
	Connectivity      string
	Features          []string
	Color             string
	BatteryLife       string
	NoiseCancellation bool
	Microphone        bool
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) ([]model.Product, error) {
	products, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Category: in.Category,
		Brand:    in.Brand,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Search:   in.Search,
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return products, nil
}

func (u *ProductUsecase) Detail(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *ProductUsecase) Create(ctx context.Context, in ProductInput) (model.Product, error) {
	p, err := buildProduct(in)
	if err != nil {
		return model.Product{}, err
	}

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *ProductUsecase) Update(ctx context.Context, id int64, in ProductInput) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := buildProduct(in)
	if err != nil {
		return model.Product{}, err
	}

	updated, err := u.productRepo.Update(ctx, id, p)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return updated, nil
}

// Delete は商品を論理削除し、画像ファイルの後始末用にパスを返す。
func (u *ProductUsecase) Delete(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return "", NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.productRepo.SoftDelete(ctx, id); err != nil {
		if err == repo.ErrNotFound {
			return "", NewHTTPError(http.StatusNotFound, "product not found")
		}
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return p.Image, nil
}

func buildProduct(in ProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "description is required")
	}
	if strings.TrimSpace(in.Brand) == "" || strings.TrimSpace(in.Model) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "brand and model are required")
	}
	if in.Price.LessThan(decimal.Zero) {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Available < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid available")
	}

	category := model.ProductCategory(strings.TrimSpace(in.Category))
	if !category.Valid() {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	connectivity := model.Connectivity(strings.TrimSpace(in.Connectivity))
	if !connectivity.Valid() {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid connectivity")
	}

	discount := strings.TrimSpace(in.Discount)
	if discount == "" {
		discount = "0%"
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = "Black"
	}
	features := in.Features
	if features == nil {
		features = []string{}
	}

	return model.Product{
		Name:              name,
		Image:             in.Image,
		Price:             in.Price.Round(2),
		Description:       in.Description,
		Category:          category,
		Available:         in.Available,
		Discount:          discount,
		Brand:             strings.TrimSpace(in.Brand),
		Model:             strings.TrimSpace(in.Model),
		Connectivity:      connectivity,
		Features:          features,
		Color:             color,
		BatteryLife:       strings.TrimSpace(in.BatteryLife),
		NoiseCancellation: in.NoiseCancellation,
		Microphone:        in.Microphone,
	}, nil
}
