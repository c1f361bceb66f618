package servererrors

import "errors"

var (
	ErrInvalidRequestPayload = errors.New("invalid request payload")
	ErrValidationFailed      = errors.New("validation failed")
	ErrURLQueryParams        = errors.New("invalid url query params")
	ErrStoreUnavailable      = errors.New("store unavailable, please retry")
	ErrSystemBusy            = errors.New("system busy, please try again later")

	ErrNoAccessToken      = errors.New("no access token")
	ErrUnauthorized       = errors.New("not authorized, token failed")
	ErrUnauthorizedAccess = errors.New("not authorized as an admin")
	ErrNotOrderOwner      = errors.New("not authorized to access this order")
	ErrMissingCartSession = errors.New("missing cart session")

	ErrProductNotFound      = errors.New("product not found")
	ErrProductArchived      = errors.New("product is archived")
	ErrSlugAlreadyExists    = errors.New("slug already exists")
	ErrSKUAlreadyExists     = errors.New("sku already exists")
	ErrNoMatchingVariant    = errors.New("selected options do not match any variant")
	ErrMalformedVariant     = errors.New("variant attributes do not match product options")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrQuantityExceedsStock = errors.New("quantity exceeds available stock")
	ErrMissingSKU           = errors.New("sku is required")

	ErrStockNotFound     = errors.New("sku not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrEmptyCart              = errors.New("cart is empty")
	ErrMissingShippingAddress = errors.New("shipping address is required")
	ErrMissingPaymentMethod   = errors.New("payment method is required")

	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotPaid         = errors.New("order is not paid")
	ErrPaymentNotCompleted  = errors.New("payment was not completed by the provider")
	ErrMissingTransactionID = errors.New("payment transaction id is required")
)
