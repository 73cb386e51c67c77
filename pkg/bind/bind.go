// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/pkg/validate"
)

// ErrEmptyBody is returned when the request has no body at all.
var ErrEmptyBody = errors.New("request body is empty")

// JSON decodes r.Body into dest and runs validation. The body is capped at
// MAX_BODY_BYTES.
//
// Returns (errs, nil) when validation fails and (nil, err) when the body is
// missing, malformed or too large.
func JSON(r *http.Request, dest any) (map[string]string, error) {
	if err := decode(r, dest); err != nil {
		return nil, err
	}
	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

// JSONPartial is JSON for PATCH bodies: nil pointer fields are not
// validated.
func JSONPartial(r *http.Request, dest any) (map[string]string, error) {
	if err := decode(r, dest); err != nil {
		return nil, err
	}
	if errs := validate.Partial(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

func decode(r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		default:
			return fmt.Errorf("invalid JSON: %w", err)
		}
	}
	return nil
}
