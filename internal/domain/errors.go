package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a create collided with an existing entity.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalid marks input rejected by validation. Wrap it with the reason.
	ErrInvalid = errors.New("invalid input")
	// ErrVersionConflict is returned when a conditional write lost a race.
	ErrVersionConflict = errors.New("version conflict")

	// ErrUnknownSource is returned when a status update arrives without the
	// storage path the order was read from.
	ErrUnknownSource = errors.New("order source path unknown, refresh the order list")
	// ErrRefundExists blocks a second refund request on the same order.
	ErrRefundExists = errors.New("refund already requested for this order")
	// ErrRefundNotAllowed covers status and window gates on refund requests.
	ErrRefundNotAllowed = errors.New("refund not allowed for this order")
	// ErrRefundDecided is returned when an admin decides an already processed request.
	ErrRefundDecided = errors.New("refund request already processed")
)
