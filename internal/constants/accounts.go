package constants

const (
	// DefaultAccount is the daemon's unnamed account.
	DefaultAccount = ""
	FeesAccount    = "fees"

	// AccountPlaceholder is stored in place of an empty account name.
	AccountPlaceholder = "_"
)

// MonitoredAccounts are always watched, whatever the configuration adds.
var MonitoredAccounts = []string{DefaultAccount, FeesAccount}
