package utils

import (
	"time"

	"github.com/hance08/teller/internal/constants"
	"github.com/shopspring/decimal"
)

// CoinDecimals is the number of fractional digits a coin amount carries.
const CoinDecimals = 8

// FormatAmount renders a coin amount with a fixed number of decimals,
// e.g. 12.5 -> "12.50000000".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(CoinDecimals)
}

func FormatTime(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Format(constants.DateFormat)
}

// DisplayAccount shows the stored placeholder as the daemon's default account.
func DisplayAccount(name string) string {
	if name == "" || name == constants.AccountPlaceholder {
		return "(default)"
	}
	return name
}

// Shorten keeps the head and tail of long hashes for table output.
func Shorten(s string, keep int) string {
	if keep <= 0 || len(s) <= 2*keep+3 {
		return s
	}
	return s[:keep] + "..." + s[len(s)-keep:]
}
