package services

import "errors"

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a record belongs to a different user
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownIngredient is returned when a master_id does not match a catalog entry
	ErrUnknownIngredient = errors.New("unknown ingredient master")
)

// checkOwner maps a loaded record's owner against the caller
func checkOwner(ownerID, userID string) error {
	if ownerID != userID {
		return ErrForbidden
	}
	return nil
}
