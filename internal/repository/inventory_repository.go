package repository

import "context"

type InventoryRepository interface {
	// 在庫減算。予約やロックは取らない方針なので、
	// 同時チェックアウトでは一時的にマイナスになり得る。
	DecrementStock(ctx context.Context, productID int64, qty int64) error

	// 在庫戻し（注文キャンセル時）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error
}
