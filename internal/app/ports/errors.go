package ports

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrMaterialize = errors.New("materialize chunk")
)
