package errhandler

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/huh"
	"github.com/hance08/teller/internal/reconcile"
	"github.com/hance08/teller/internal/service"
)

// Describe turns err into the message shown to the user. cancelled is true
// when the user interrupted a prompt.
func Describe(err error) (msg string, cancelled bool) {
	switch {
	case errors.Is(err, terminal.InterruptErr), errors.Is(err, huh.ErrUserAborted):
		return "Operation Cancelled", true
	case errors.Is(err, reconcile.ErrSourceUnavailable):
		return fmt.Sprintf("%v (is the daemon running and are daemon.host, daemon.user and daemon.pass correct?)", err), false
	case errors.Is(err, reconcile.ErrStoreWriteFailed):
		return fmt.Sprintf("%v (records already written are kept; the next cycle retries the rest)", err), false
	case errors.Is(err, service.ErrInvalidKind), errors.Is(err, service.ErrInvalidLimit):
		return err.Error(), false
	}
	return err.Error(), false
}
