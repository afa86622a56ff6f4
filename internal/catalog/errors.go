package catalog

import "errors"

// ErrUnknownCategory is returned when a category name is not recognised.
var ErrUnknownCategory = errors.New("catalog: unknown category")
