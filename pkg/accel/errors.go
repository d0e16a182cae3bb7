package accel

import "errors"

var (
	ErrNilBLAS           = errors.New("accel: instance has no bottom-level structure")
	ErrCustomIndexRange  = errors.New("accel: instance custom index exceeds 24 bits")
	ErrSBTOffsetRange    = errors.New("accel: instance shader binding table offset exceeds 24 bits")
	ErrSingularTransform = errors.New("accel: instance transform is not invertible")
	ErrNilGeometry       = errors.New("accel: nil geometry")
)
