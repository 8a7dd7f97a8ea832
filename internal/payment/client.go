package payment

import (
	"context"
	"errors"
)

// intentの最終ステータス。succeeded以外は未完了扱い。
const StatusSucceeded = "succeeded"

// プロバイダ側の失敗（通信・拒否）をまとめるエラー。
// 生のエラーメッセージをそのままユーザーへ返さないための境界。
var ErrProvider = errors.New("payment provider error")

// Intent は決済プロバイダが管理するpayment intentのうち、
// バックエンドが必要とする部分だけ。カード情報は一切持たない。
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Status       string `json:"status"`
}

// Client は決済プロバイダとの境界。
// カード確定（confirm）はクライアント側がプロバイダと直接行うので、
// バックエンドは作成と照会だけを持つ。
type Client interface {
	// amountMinor は最小通貨単位（セント）
	CreateIntent(ctx context.Context, amountMinor int64, currency string) (Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (Intent, error)
}
