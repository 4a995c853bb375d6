package transfer

import "errors"

var (
	// ErrMismatchedSubcategory is returned when the proposed subcategory does not
	// belong to the proposed category.
	ErrMismatchedSubcategory = errors.New("subcategory does not belong to the selected category")
	// ErrMissingCategory is returned when a subcategory is proposed without a category.
	ErrMissingCategory = errors.New("select a category before a subcategory")
)
