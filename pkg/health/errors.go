package health

import "errors"

// ErrCheckTimeout replaces context.DeadlineExceeded in check results so
// probe output names the cause instead of a context internal.
var ErrCheckTimeout = errors.New("health: check timeout")
