package location

import "errors"

var (
	ErrNotFound   = errors.New("location not found")
	ErrCodeExists = errors.New("location code already exists")
)
