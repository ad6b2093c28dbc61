package repositories

import "errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateReference  = errors.New("transaction reference already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPricingNotFound     = errors.New("pricing not found")
	ErrUserNotFound        = errors.New("user not found")
)
