package garnish

import "errors"

// Sentinel errors for the annotation/compile/dispatch error kinds named in
// the error handling policy: each is wrapped with %w so callers can
// errors.Is against the kind while still seeing a specific message.
var (
	ErrEmptyAnnotation  = errors.New("garnish: annotation expression parsed to nothing")
	ErrMissingJumpPoint = errors.New("garnish: missing jump-table entry")
	ErrExecStep         = errors.New("garnish: execution step failed")
	ErrNoValue          = errors.New("garnish: no terminal value produced")
	ErrBadShape         = errors.New("garnish: annotation value has the wrong shape")
	ErrRouteNotFound    = errors.New("garnish: route not found")
)
