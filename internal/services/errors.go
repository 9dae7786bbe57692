package services

import "errors"

// ErrValidation marks user-correctable input problems. Handlers map it to a
// 400 response; more specific sentinel errors live next to their service.
var ErrValidation = errors.New("validation failed")
