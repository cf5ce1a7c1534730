package errs

import "errors"

var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrInvalidCursor   = errors.New("invalid cursor")
	ErrIDCollision     = errors.New("id collision")
	ErrDetectionFailed = errors.New("detection failed")
)
