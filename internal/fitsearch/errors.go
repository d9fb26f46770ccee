package fitsearch

import "errors"

// ErrSearchInProgress is returned when Fit is called on a session that is
// already searching. Callers treat it as a no-op.
var ErrSearchInProgress = errors.New("photo fit search already in progress")
