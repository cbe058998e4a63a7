package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound    = errors.New("remote: not found")
	ErrForbidden   = errors.New("remote: forbidden")
	ErrUnavailable = errors.New("remote: service unavailable")
	ErrBadRequest  = errors.New("remote: bad request")
)

func statusError(resp *http.Response) error {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	reason := payload.Error
	if reason == "" {
		reason = payload.Detail
	}
	if reason == "" {
		reason = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, reason)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrForbidden, reason)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrUnavailable, reason)
	default:
		return fmt.Errorf("%w: %s", ErrBadRequest, reason)
	}
}
