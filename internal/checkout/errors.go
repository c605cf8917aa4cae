package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSignatureInvalid  = errors.New("signature verification failed")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrGateway           = errors.New("payment gateway unavailable")
	// ErrRequestInProgress is returned when an idempotency key matches an
	// order whose payment intent is still being created.
	ErrRequestInProgress = errors.New("request with this idempotency key is still in progress")
)

// ProductNotFoundError names the first cart product that does not exist.
type ProductNotFoundError struct {
	ID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with id %d does not exist", e.ID)
}

func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}
