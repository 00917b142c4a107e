package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	var errBody struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(resp.Body(), &errBody) == nil && errBody.Message != "" {
		body = errBody.Message
	}
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}

	return &RemoteError{StatusCode: resp.StatusCode(), Message: body}
}

// mapTransportError classifies an error returned by resty before any
// response was received. Cancellation by the caller is not a network
// failure and is returned as is.
func mapTransportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
}
