package aerosol

import "errors"

var (
	// ErrUnknownPhase is returned for phase tags outside liquid, ice and soot.
	ErrUnknownPhase = errors.New("aerosol: unknown phase")

	// ErrInvalidArgument marks malformed bins or distribution parameters.
	ErrInvalidArgument = errors.New("aerosol: invalid argument")
)
