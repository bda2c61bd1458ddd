package domain

import "errors"

var (
	// ErrProductNotFound is returned when Open Food Facts has no product for a barcode
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when the outbound rate limiter gives up waiting
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrFoodFactsAPIFailure is returned when an Open Food Facts request fails
	ErrFoodFactsAPIFailure = errors.New("Open Food Facts API request failed")
)
