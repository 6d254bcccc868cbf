package service

import (
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

// storeError translates repository sentinels into client-facing errors.
// what names the entity, e.g. "order".
func storeError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(what + " not found")
	case errors.Is(err, repository.ErrOptimisticLock):
		return apperror.Conflict(what + " was modified concurrently, please retry")
	case errors.Is(err, repository.ErrAlreadyExists):
		return apperror.Conflict(what + " already exists")
	case errors.Is(err, repository.ErrInsufficientStock):
		return apperror.Conflict("insufficient stock")
	case errors.Is(err, repository.ErrConflict):
		return apperror.Conflict(what + " cannot be changed in its current state")
	default:
		return apperror.Internal(fmt.Sprintf("failed to access %s", what), err)
	}
}
