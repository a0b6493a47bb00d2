package service

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrValidationFailed     = errors.New("checkout form has invalid fields")
	ErrSubmissionInProgress = errors.New("checkout submission already in progress")
	ErrOrderCreation        = errors.New("order creation failed")
)

// Messages shown at form level. They never carry internal detail.
const (
	MsgEmptyCart   = "Your cart is empty."
	MsgOrderFailed = "We could not place your order. Please try again."
)
