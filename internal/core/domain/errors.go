package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPetitionNotFound              = errors.New("petition not found")
	ErrInvalidInput                  = errors.New("invalid input")
	ErrTemporary                     = errors.New("temporary failure")
	ErrCatalogUnavailable            = errors.New("classification catalog unavailable")
	ErrInvalidReclassificationTarget = errors.New("invalid reclassification target")
	ErrAlreadyManual                 = errors.New("petition already manually classified")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
