package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// アクセストークンの有効期限（cookieも同じ）
const accessTokenTTL = 7 * 24 * time.Hour

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, username string, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type AuthRegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type AuthRegisterOutput struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type AuthLoginInput struct {
	Email    string
	Password string
}

type AuthLoginOutput struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
	Token   string  `json:"token"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repo.UserRepository
	validator AuthValidator
}

func NewAuthUsecase(cfg config.Config, users repo.UserRepository, validator AuthValidator) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		validator: validator,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in AuthRegisterInput) (AuthRegisterOutput, error) {
	// 入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in.Username, in.Email, in.Password); err != nil {
		return AuthRegisterOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	exists, err := u.users.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return AuthRegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return AuthRegisterOutput{}, NewHTTPError(http.StatusConflict, "user already exists")
	}

	// パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthRegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	role := model.RoleUser
	if strings.TrimSpace(in.Role) == string(model.RoleAdmin) {
		role = model.RoleAdmin
	}

	user := &model.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(pwHash),
		Role:         role,
	}

	if err := u.users.Create(ctx, user); err != nil {
		// unique違反は競合扱い
		return AuthRegisterOutput{}, NewHTTPError(http.StatusConflict, "user already exists")
	}

	return AuthRegisterOutput{
		Message: "user registered successfully",
		UserID:  user.ID,
	}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, in AuthLoginInput) (AuthLoginOutput, error) {
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return AuthLoginOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil || user == nil {
		// ユーザー不在とパスワード不一致は同じ応答にする
		return AuthLoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return AuthLoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := u.issueAccessToken(user)
	if err != nil {
		return AuthLoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return AuthLoginOutput{
		Message: "login successful",
		User:    toUserDTO(user),
		Token:   token,
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return toUserDTO(user), nil
}

// jwt発行（HS256、subにuser ID）
func (u *AuthUsecase) issueAccessToken(user *model.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(u.cfg.JWTSecret))
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}
