package validation

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// MaxAccountNameLen bounds a daemon account name.
const MaxAccountNameLen = 255

// ValidateHost checks a daemon RPC address in host:port form.
func ValidateHost(val string) error {
	val = strings.TrimSpace(val)
	if val == "" {
		return fmt.Errorf("daemon host can't be empty")
	}

	host, port, err := net.SplitHostPort(val)
	if err != nil {
		return fmt.Errorf("daemon host must look like host:port (e.g. localhost:22555)")
	}
	if host == "" {
		return fmt.Errorf("daemon host is missing a hostname")
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

// ValidateAccountName checks a daemon account name. The empty name is the
// default account and is valid; "*" means every account to the daemon and
// can't be monitored on its own.
func ValidateAccountName(name string) error {
	if name == "*" {
		return fmt.Errorf("'*' is reserved by the daemon")
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("account name %q has leading or trailing spaces", name)
	}
	if len(name) > MaxAccountNameLen {
		return fmt.Errorf("account name too long (max %d characters)", MaxAccountNameLen)
	}
	return nil
}

// ValidateRequired returns a validator rejecting blank input for field.
func ValidateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
