package domain

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrQueueItemNotFound = errors.New("queue item not found")
	ErrInvalidStatus     = errors.New("invalid status")
)
