package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hance08/teller/internal/model"
)

const MaxListLimit = 1000

var (
	ErrInvalidKind  = errors.New("invalid record kind")
	ErrInvalidLimit = errors.New("invalid limit")
)

// ParseKind accepts send, receive or move (case-insensitive) and "" or
// "all" for every collection.
func ParseKind(s string) (model.Collection, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return "", nil
	}
	kind := model.Collection(s)
	if !slices.Contains(model.Collections, kind) {
		return "", fmt.Errorf("%w %q (must be send, receive or move)", ErrInvalidKind, s)
	}
	return kind, nil
}

func validateLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("%w: %d can't be negative", ErrInvalidLimit, limit)
	}
	if limit > MaxListLimit {
		return fmt.Errorf("%w: %d is above the maximum of %d", ErrInvalidLimit, limit, MaxListLimit)
	}
	return nil
}
