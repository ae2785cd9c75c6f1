package service

import (
	"context"
	"errors"
	"fmt"

	"tireshop/internal/money"
	"tireshop/internal/repository"
	"tireshop/internal/serviceorder"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("registro não encontrado")
	ErrInsufficientStock  = errors.New("estoque insuficiente")
	ErrConflict           = errors.New("registro em conflito com dados existentes")
	ErrInvalidCredentials = errors.New("credenciais inválidas")
)

// RemoteCallError wraps a failure of the store with the operation that hit it.
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *RemoteCallError) Unwrap() error { return e.Err }

// storeErr classifies a repository error into the service taxonomy. Anything
// it does not recognise is logged and returned as a RemoteCallError.
func storeErr(ctx context.Context, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case repository.IsDuplicateKey(err), repository.IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case repository.IsCheckViolation(err):
		return fmt.Errorf("%s: %w", op, ErrInsufficientStock)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &RemoteCallError{Op: op, Err: err}
	}
	log.Ctx(ctx).Error().Err(err).Str("op", op).Msg("store call failed")
	return &RemoteCallError{Op: op, Err: err}
}

// passThrough keeps errors already classified by this package or by the
// order engine and classifies the rest.
func passThrough(ctx context.Context, op string, err error) error {
	var remote *RemoteCallError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrInsufficientStock), errors.Is(err, serviceorder.ErrValidation),
		errors.Is(err, serviceorder.ErrInvalidTransition), errors.Is(err, serviceorder.ErrEmptyOrder),
		errors.As(err, &remote):
		return err
	}
	return storeErr(ctx, op, err)
}

// invalid builds a single-field validation failure.
func invalid(field, tag string) error {
	return &serviceorder.ValidationError{Fields: map[string]string{field: tag}}
}

// wholeCents fails with a "cents" entry for every price, keyed by field,
// that carries a fraction of a cent.
func wholeCents(prices map[string]decimal.Decimal) error {
	fields := map[string]string{}
	for field, price := range prices {
		if !money.IsCents(price) {
			fields[field] = "cents"
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &serviceorder.ValidationError{Fields: fields}
}
