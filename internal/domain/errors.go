package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidLine indicates a cart line with a bad quantity or unresolved price.
	ErrInvalidLine = errors.New("invalid line")
	// ErrPromotionConflict indicates the product is already targeted by an active promotion.
	ErrPromotionConflict = errors.New("promotion conflict")
	// ErrProductNotFound indicates a checkout line referenced an unknown product or variant.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock indicates an operation would drive stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidAddress indicates a missing, malformed or foreign shipping address.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrIllegalTransition indicates a forbidden order status change.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrDuplicateWebhook indicates the external payment reference was already
	// materialized. Callers treat it as success and acknowledge the delivery.
	ErrDuplicateWebhook = errors.New("duplicate webhook")
	// ErrGatewayVerification indicates an inbound notification failed authenticity checks.
	ErrGatewayVerification = errors.New("gateway verification failed")
	// ErrPersistenceConflict indicates a storage-level conflict outside the dedup path.
	ErrPersistenceConflict = errors.New("persistence conflict")
)
