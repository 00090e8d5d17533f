package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// maxRequestBody caps decoded request bodies. Item descriptions are the
// largest expected payload and stay well under this.
const maxRequestBody = 1 << 20

var validate = validator.New()

// DecodeJSON decodes the request body into v. Bodies over maxRequestBody and
// trailing garbage after the JSON document are rejected.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected content after JSON body")
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

// ValidateRequest validates v against its struct tags. Types with their own
// Validate method take precedence over tag validation.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}
