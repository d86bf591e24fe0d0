package usecase

import "errors"

// ErrPermissionDenied indicates the caller's role lacks the capability flag an
// operation requires. Handlers map it to 403 for API clients and to a
// dashboard redirect for page requests.
var ErrPermissionDenied = errors.New("permission denied")
