package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/decisionlog"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, doorman.ErrObjectNotFound) || errors.Is(err, decisionlog.ErrEntryNotFound) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, doorman.ErrLoaderNotFound) || errors.Is(err, doorman.ErrFinderRequired) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, doorman.ErrAccessDenied) || errors.Is(err, doorman.ErrNotAuthorized) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
