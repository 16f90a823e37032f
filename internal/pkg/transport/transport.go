// Package transport holds what the device and account HTTP clients share.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

const DefaultTimeout = 10 * time.Second

// StatusError is returned for any non 2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s %s returned %d: %s", ErrUnexpectedStatus, e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Do sends req and returns the body of a 2xx response. It does not retry.
func Do(client *http.Client, req *http.Request) ([]byte, *http.Response, error) {
	res, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, res, &StatusError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: res.StatusCode,
			Body:       string(body),
		}
	}
	return body, res, nil
}
