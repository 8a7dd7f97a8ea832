package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error) {
	var lines []model.CartLine

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}

	return lines, nil
}

// 同一商品は数量加算（user_id×product_idのユニーク制約前提）
func (r *CartGormRepository) UpsertLine(ctx context.Context, userID int64, productID int64, addQty int64) (model.CartLine, error) {
	if addQty <= 0 {
		return model.CartLine{}, errors.New("invalid quantity")
	}

	var line model.CartLine

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			First(&line).Error

		if findErr == nil {
			// 既存ありなら数量を増やす
			line.Quantity += addQty
			res := tx.Model(&model.CartLine{}).
				Where("id = ?", line.ID).
				Update("quantity", line.Quantity)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		// 無ければ新規作成
		line = model.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  addQty,
		}
		return tx.Create(&line).Error
	})

	if err != nil {
		return model.CartLine{}, err
	}
	return line, nil
}

func (r *CartGormRepository) UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) (model.CartLine, error) {
	var line model.CartLine

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartLine{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartLine{}, err
	}

	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ?", line.ID).
		Update("quantity", qty)
	if res.Error != nil {
		return model.CartLine{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.CartLine{}, repo.ErrNotFound
	}

	line.Quantity = qty
	return line, nil
}

func (r *CartGormRepository) DeleteLine(ctx context.Context, userID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartLine{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ユーザーの明細を全削除。明細ゼロでもエラーにしない（冪等）。
func (r *CartGormRepository) ClearByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartLine{}).Error
}
