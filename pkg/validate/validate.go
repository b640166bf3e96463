// Package validate checks option bags for required parameters.
package validate

import (
	"github.com/go-drift/viewkit/pkg/async"
	"github.com/go-drift/viewkit/pkg/binding"
	"github.com/go-drift/viewkit/pkg/errors"
)

// Validate returns a *errors.MissingParameterError for the first required
// name that options does not carry a non-empty value for. Options may be a
// map or a struct; struct fields are matched by their bind tag or
// case-insensitively by name.
func Validate(options any, required ...string) error {
	for _, name := range required {
		v, ok := binding.Lookup(options, name)
		if !ok || binding.IsEmpty(v) {
			return &errors.MissingParameterError{Name: name}
		}
	}
	return nil
}

// ValidateAsync is Validate reported through a deferred result: it resolves
// with options when valid and rejects otherwise.
func ValidateAsync(options any, required ...string) *async.Result {
	if err := Validate(options, required...); err != nil {
		return async.Rejected(err)
	}
	return async.Resolved(options)
}
