package esxi

import (
	"errors"
	"fmt"

	"github.com/vmware/govmomi/fault"
	"github.com/vmware/govmomi/vim25/types"
)

var (
	// ErrAPI matches every failure reported by the vSphere API.
	ErrAPI = errors.New("vmware api error")
	// ErrNotFound is returned when a datacenter, cluster, host or service does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for values the API would reject.
	ErrInvalidArgument = errors.New("invalid argument")
)

// APIError wraps a fault raised by a vSphere call made for one host.
type APIError struct {
	Op   string // operation name, e.g. "list_pkgs"
	Host string // host the call was made for ("" when not host specific)
	Kind error  // ErrNotFound or ErrInvalidArgument when the fault maps to one
	Err  error
}

func (e *APIError) Error() string {
	if e.Host == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Host, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is reports ErrAPI for every APIError and the mapped kind, if any.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI || (e.Kind != nil && target == e.Kind)
}

// apiError wraps err as an *APIError, classifying well-known faults.
func apiError(op, host string, err error) error {
	if err == nil {
		return nil
	}
	var existing *APIError
	if errors.As(err, &existing) {
		return err
	}
	return &APIError{Op: op, Host: host, Kind: faultKind(err), Err: err}
}

func faultKind(err error) error {
	switch {
	case fault.Is(err, &types.ManagedObjectNotFound{}),
		fault.Is(err, &types.NotFound{}):
		return ErrNotFound
	case fault.Is(err, &types.InvalidArgument{}),
		fault.Is(err, &types.InvalidName{}),
		fault.Is(err, &types.InvalidState{}):
		return ErrInvalidArgument
	}
	return nil
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
