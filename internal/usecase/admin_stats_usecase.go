package usecase

import (
	"context"
	"net/http"

	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 管理画面のダッシュボード用集計
type AdminStatsUsecase struct {
	productRepo repo.ProductRepository
	orderRepo   repo.OrderRepository
	userRepo    repo.UserRepository
}

func NewAdminStatsUsecase(
	productRepo repo.ProductRepository,
	orderRepo repo.OrderRepository,
	userRepo repo.UserRepository,
) *AdminStatsUsecase {
	return &AdminStatsUsecase{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
	}
}

type AdminStatsOutput struct {
	Products int64           `json:"products"`
	Orders   int64           `json:"orders"`
	Users    int64           `json:"users"`
	Revenue  decimal.Decimal `json:"revenue"` // 支払い済み注文の合計
}

func (u *AdminStatsUsecase) Stats(ctx context.Context) (AdminStatsOutput, error) {
	products, err := u.productRepo.Count(ctx)
	if err != nil {
		return AdminStatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	users, err := u.userRepo.Count(ctx)
	if err != nil {
		return AdminStatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	orders, revenue, err := u.orderRepo.CountAndRevenue(ctx)
	if err != nil {
		return AdminStatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return AdminStatsOutput{
		Products: products,
		Orders:   orders,
		Users:    users,
		Revenue:  revenue,
	}, nil
}
