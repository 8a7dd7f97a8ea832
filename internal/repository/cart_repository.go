package repository

import (
	"context"

	"app/internal/domain/model"
)

// カートはユーザーIDをキーにした明細の集まり。
type CartRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error)

	// 同一商品は数量加算
	UpsertLine(ctx context.Context, userID int64, productID int64, addQty int64) (model.CartLine, error)

	UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) (model.CartLine, error)
	DeleteLine(ctx context.Context, userID int64, productID int64) error

	// ユーザーの明細を全削除（注文確定後のクリア）
	ClearByUserID(ctx context.Context, userID int64) error
}
