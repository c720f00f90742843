package doorman

import "errors"

var (
	// ErrAccessDenied is returned by Enforce when a decision is not allow.
	ErrAccessDenied = errors.New("doorman: access denied")

	// ErrNotAuthorized is the authorization-error sentinel. Custom
	// predicates and Authorizer implementations wrap it to signal an
	// explicit denial rather than an unexpected failure.
	ErrNotAuthorized = errors.New("doorman: not authorized")

	// ErrObjectNotFound is wrapped by Finder implementations when the
	// target object does not exist.
	ErrObjectNotFound = errors.New("doorman: object not found")

	// ErrRegistryRequired is returned when a Guard is built without a registry.
	ErrRegistryRequired = errors.New("doorman: registry is required")

	// ErrAuthorizerRequired is returned when a Guard is built without an
	// Authorizer.
	ErrAuthorizerRequired = errors.New("doorman: authorizer is required")

	// ErrFinderRequired is returned when a rule needs the default finder
	// but no Finder is configured.
	ErrFinderRequired = errors.New("doorman: finder is required")

	// ErrLoaderNotFound is returned when a rule names a loader that the
	// execution context does not provide.
	ErrLoaderNotFound = errors.New("doorman: named loader not found")
)
