package money

import "github.com/shopspring/decimal"

// 通貨の最小単位（セント）との変換。
// 決済プロバイダへは必ず整数の最小単位で送る。浮動小数のまま
// 掛け算するとズレるのでdecimalで丸める（切り捨てではなく四捨五入）。

// ToMinorUnits はドル額をセントに変換する。
// 19.999のような端数は2000に丸める（切り捨てだと恒常的に請求不足になる）。
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits はセントをドル額（小数2桁）に戻す。
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// Round2 は表示・保存用に小数2桁へ丸める。
// ToMinorUnits と同じ丸め方向なので、往復しても1セントずれない。
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
