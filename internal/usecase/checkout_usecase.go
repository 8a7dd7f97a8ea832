package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	"app/internal/money"
	"app/internal/payment"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 決済に使う通貨。intent作成時は最小単位（セント）に変換して送る。
const checkoutCurrency = "usd"

// CheckoutUsecase はカート→注文の確定フローを進める。
//
// 流れ:
//  1. CreatePaymentIntent: カート合計からintentを作ってclient_secretを返す
//  2. （クライアントがプロバイダと直接カード確定。バックエンドは関与しない）
//  3. ConfirmAndFinalize: intentをサーバー側で照会し直してsucceededを確認
//     してから、注文作成→カート削除→在庫減算の順に確定する
//
// 注文作成が最初。以降のステップが失敗しても注文は消さない
// （カートが残るのは再取得で回復できるが、消えた注文は回復できない）。
type CheckoutUsecase struct {
	tx       repo.TransactionManager
	cartRepo repo.CartRepository
	invRepo  repo.InventoryRepository
	payment  payment.Client // nilなら決済機能が無効
	logger   Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	invRepo repo.InventoryRepository,
	paymentClient payment.Client,
	logger Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:       tx,
		cartRepo: cartRepo,
		invRepo:  invRepo,
		payment:  paymentClient,
		logger:   logger,
	}
}

type CreateIntentInput struct {
	Amount decimal.Decimal
}

type CreateIntentOutput struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	Amount          int64  `json:"amount"`
}

// チェックアウト確定の入力。items/total_amountはクライアントのカート
// ビュー由来（原システムの挙動を踏襲。サーバー側再計算はしない）。
type ConfirmItemInput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Image     string          `json:"image"`
}

type ConfirmInput struct {
	PaymentIntentID string
	Items           []ConfirmItemInput
	TotalAmount     decimal.Decimal
	ShippingAddress model.ShippingAddress
}

type CheckoutOutput struct {
	OrderID       int64           `json:"order_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemCount     int             `json:"item_count"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
}

// CreatePaymentIntent はカート合計に合わせたintentをプロバイダに作らせる。
func (u *CheckoutUsecase) CreatePaymentIntent(ctx context.Context, userID int64, in CreateIntentInput) (CreateIntentOutput, error) {
	if userID <= 0 {
		return CreateIntentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	// キー未設定は「決済が使えない」という独立した状態。一般エラーにしない
	if u.payment == nil {
		return CreateIntentOutput{}, NewHTTPError(http.StatusServiceUnavailable, "payment unavailable")
	}

	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return CreateIntentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid amount")
	}

	// 空カートでintentを作らせない
	lines, err := u.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CreateIntentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(lines) == 0 {
		return CreateIntentOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	// 最小単位への変換は四捨五入（切り捨てだと恒常的な請求不足になる）
	minor := money.ToMinorUnits(in.Amount)

	intent, err := u.payment.CreateIntent(ctx, minor, checkoutCurrency)
	if err != nil {
		u.logger.Errorf("create intent failed: user=%d amount=%d: %v", userID, minor, err)
		return CreateIntentOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider error")
	}

	return CreateIntentOutput{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          intent.Amount,
	}, nil
}

// ConfirmAndFinalize はクライアントが成功を申告してきたintentを
// サーバー側で照会し直し、succeededのときだけ注文を確定する。
func (u *CheckoutUsecase) ConfirmAndFinalize(ctx context.Context, userID int64, in ConfirmInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if u.payment == nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusServiceUnavailable, "payment unavailable")
	}

	if strings.TrimSpace(in.PaymentIntentID) == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_intent_id")
	}
	if err := validateShippingAddress(in.ShippingAddress); err != nil {
		return CheckoutOutput{}, err
	}
	if len(in.Items) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid items")
		}
	}

	// クライアント申告は信用せず、プロバイダに最終ステータスを確認する。
	// ここがsucceededでなければ注文もカート削除も在庫減算も起きない。
	intent, err := u.payment.RetrieveIntent(ctx, in.PaymentIntentID)
	if err != nil {
		u.logger.Errorf("retrieve intent failed: user=%d intent=%s: %v", userID, in.PaymentIntentID, err)
		return CheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider error")
	}
	if intent.Status != payment.StatusSucceeded {
		return CheckoutOutput{}, NewHTTPError(http.StatusPaymentRequired, "payment not completed")
	}

	total := money.Round2(in.TotalAmount)

	addr := trimAddress(in.ShippingAddress)
	order := model.Order{
		UserID:          userID,
		TotalAmount:     total,
		Status:          model.OrderStatusProcessing,
		PaymentStatus:   model.PaymentStatusPaid,
		PaymentIntentID: intent.ID,
		ShippingAddress: addr,
	}

	items := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, model.OrderItem{
			ProductID:         it.ProductID,
			NameSnapshot:      it.Name,
			UnitPriceSnapshot: money.Round2(it.Price),
			ImageSnapshot:     it.Image,
			Quantity:          it.Quantity,
		})
	}

	// 注文＋明細だけは1トランザクション。ここが通った時点で注文は確定
	var orderID int64
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, id, items); err != nil {
			return err
		}
		orderID = id
		return nil
	})
	if err != nil {
		u.logger.Errorf("order create failed: user=%d intent=%s: %v", userID, intent.ID, err)
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// カート削除。失敗しても注文は立っているので中断しない
	// （古いカートが残るだけ。次回取得で気付ける）
	if err := u.cartRepo.ClearByUserID(ctx, userID); err != nil {
		u.logger.Errorf("cart clear failed after order %d: user=%d: %v", orderID, userID, err)
	}

	// 在庫減算は明細ごとに独立したベストエフォート。
	// 1件失敗しても他の明細は続行し、注文も取り消さない。
	for _, it := range items {
		if err := u.invRepo.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			u.logger.Warnf("stock decrement failed: order=%d product=%d qty=%d: %v",
				orderID, it.ProductID, it.Quantity, err)
		}
	}

	return CheckoutOutput{
		OrderID:       orderID,
		TotalAmount:   total,
		ItemCount:     len(items),
		Status:        string(model.OrderStatusProcessing),
		PaymentStatus: string(model.PaymentStatusPaid),
	}, nil
}

// 配送先の5項目はすべて必須（trim後に非空）。エラーは項目名付きで返す。
func validateShippingAddress(a model.ShippingAddress) error {
	fields := []struct {
		name  string
		value string
	}{
		{"full_name", a.FullName},
		{"address", a.Address},
		{"city", a.City},
		{"postal_code", a.PostalCode},
		{"phone", a.Phone},
	}

	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return NewHTTPError(http.StatusBadRequest, f.name+" is required")
		}
	}
	return nil
}

func trimAddress(a model.ShippingAddress) model.ShippingAddress {
	return model.ShippingAddress{
		FullName:   strings.TrimSpace(a.FullName),
		Address:    strings.TrimSpace(a.Address),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Phone:      strings.TrimSpace(a.Phone),
	}
}
