package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Code represents a typed error code surfaced to API clients.
type Code string

// Dashboard error codes.
const (
	// ErrConnectionConfig: no usable cluster credentials or context.
	ErrConnectionConfig Code = "CONNECTION_CONFIG"
	// ErrFetchFailed: the inventory call to the cluster failed.
	ErrFetchFailed Code = "FETCH_FAILED"
	// ErrQuantityParse: a resource quantity could not be normalized.
	ErrQuantityParse Code = "QUANTITY_PARSE"
	// ErrUnknownCluster: the requested context does not exist.
	ErrUnknownCluster Code = "UNKNOWN_CLUSTER"
	ErrInternal       Code = "INTERNAL"
)

// defaultTTL is the auto-expiry duration for errors not re-reported.
const defaultTTL = 5 * time.Minute

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock uses the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// Error is a typed dashboard error with code, component (usually the cluster
// context name) and optional wrapped error.
type Error struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Component string `json:"component"`
	Timestamp int64  `json:"timestamp"`
	Err       error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, component, message string, err error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Component: component,
		Timestamp: time.Now().UnixMilli(),
		Err:       err,
	}
}

// ConnectionConfig reports that no usable connection could be built for component.
func ConnectionConfig(component string, err error) *Error {
	return newError(ErrConnectionConfig, component, fmt.Sprintf("cluster %q: connection config: %v", component, err), err)
}

// Fetch reports a failed inventory call against component.
func Fetch(component string, err error) *Error {
	return newError(ErrFetchFailed, component, fmt.Sprintf("cluster %q: fetch inventory: %v", component, err), err)
}

// QuantityParse reports a resource quantity that failed to parse while
// aggregating component.
func QuantityParse(component string, err error) *Error {
	return newError(ErrQuantityParse, component, fmt.Sprintf("cluster %q: parse quantity: %v", component, err), err)
}

// UnknownCluster reports a context name that is not configured.
func UnknownCluster(name string) *Error {
	return newError(ErrUnknownCluster, name, fmt.Sprintf("unknown cluster %q", name), nil)
}

// CodeOf returns the code of the first *Error in err's chain, or ErrInternal.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrInternal
}

// As is errors.As for *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrors.As(err, &e)
	return e, ok
}

// entry wraps an Error with its last-reported time for expiry tracking.
type entry struct {
	err        Error
	lastReport time.Time
}

// ErrorCollector is a thread-safe store for active errors.
// Errors are keyed by Code+Component and auto-expire after 5 minutes
// if not re-reported.
type ErrorCollector struct {
	mu      sync.Mutex
	clock   Clock
	entries map[string]entry // key = string(Code) + "|" + Component
}

// NewErrorCollector creates an ErrorCollector with the given clock.
func NewErrorCollector(clock Clock) *ErrorCollector {
	return &ErrorCollector{
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// key builds the dedup key for an error.
func key(code Code, component string) string {
	return string(code) + "|" + component
}

// Report stores or refreshes an error. The dedup key is Code+Component.
func (ec *ErrorCollector) Report(err Error) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	k := key(err.Code, err.Component)
	ec.entries[k] = entry{
		err:        err,
		lastReport: ec.clock.Now(),
	}
}

// ResolveComponent drops every error recorded for component, typically after
// a successful fetch.
func (ec *ErrorCollector) ResolveComponent(component string) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	for k, e := range ec.entries {
		if e.err.Component == component {
			delete(ec.entries, k)
		}
	}
}

// HasActive reports whether component has an unexpired error.
func (ec *ErrorCollector) HasActive(component string) bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	now := ec.clock.Now()
	for k, e := range ec.entries {
		if now.Sub(e.lastReport) > defaultTTL {
			delete(ec.entries, k)
			continue
		}
		if e.err.Component == component {
			return true
		}
	}
	return false
}

// GetActiveErrors returns all errors reported within the TTL window, ordered
// by component then code.
func (ec *ErrorCollector) GetActiveErrors() []Error {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	now := ec.clock.Now()
	result := make([]Error, 0, len(ec.entries))
	for k, e := range ec.entries {
		if now.Sub(e.lastReport) > defaultTTL {
			delete(ec.entries, k)
			continue
		}
		result = append(result, e.err)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Component != result[j].Component {
			return result[i].Component < result[j].Component
		}
		return result[i].Code < result[j].Code
	})
	return result
}

// GetActiveErrorCodes returns a deduplicated list of active error codes.
func (ec *ErrorCollector) GetActiveErrorCodes() []string {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	now := ec.clock.Now()
	seen := make(map[Code]struct{})
	codes := make([]string, 0)
	for k, e := range ec.entries {
		if now.Sub(e.lastReport) > defaultTTL {
			delete(ec.entries, k)
			continue
		}
		if _, ok := seen[e.err.Code]; !ok {
			seen[e.err.Code] = struct{}{}
			codes = append(codes, string(e.err.Code))
		}
	}
	sort.Strings(codes)
	return codes
}

// Clear removes all tracked errors.
func (ec *ErrorCollector) Clear() {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.entries = make(map[string]entry)
}
