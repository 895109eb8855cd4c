package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxRequestBody bounds the size of a decoded JSON request body.
const maxRequestBody = 1 << 20

// errEmptyBody is returned by parseJSON when the request carries no body.
var errEmptyBody = errors.New("request body is empty")

// parseJSON decodes the request body into T, rejecting unknown fields and
// trailing data.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errEmptyBody
		}
		return req, err
	}
	if decoder.More() {
		return req, fmt.Errorf("unexpected data after JSON body")
	}

	return req, nil
}
