package repository

import (
	"context"

	"app/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// 登録時の重複チェック（emailまたはusernameの一致）
	ExistsByEmailOrUsername(ctx context.Context, email string, username string) (bool, error)

	Count(ctx context.Context) (int64, error)
}
