package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/erp/storefront/internal/domain/shared"
)

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
	TotalPages *int `json:"totalPages"`
}

// unwrap returns the payload of a response body. Bodies wrapped in
// {success,data} yield data; anything else is returned unchanged.
func unwrap(body []byte) ([]byte, *envelope) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return trimmed, nil
	}
	if env.Success == nil || env.TotalPages != nil {
		return trimmed, &env
	}
	return env.Data, &env
}

// decode unmarshals the payload into out.
func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	payload, _ := unwrap(body)
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decoding backend response: %w", err)
	}
	return nil
}

// decodePage accepts the three list shapes the backend has used: a bare
// {data,total,page,limit,totalPages} page, a {success,data:{...page}} wrapper
// and a {success,data:[...],meta:{...}} wrapper.
func decodePage[T any](body []byte) (shared.Page[T], error) {
	var page shared.Page[T]

	payload, env := unwrap(body)
	if env != nil && env.Meta != nil && len(payload) > 0 && payload[0] == '[' {
		var items []T
		if err := json.Unmarshal(payload, &items); err != nil {
			return page, fmt.Errorf("decoding backend list: %w", err)
		}
		return shared.NewPage(items, env.Meta.Total, env.Meta.Page, env.Meta.PageSize), nil
	}
	if len(payload) > 0 && payload[0] == '[' {
		var items []T
		if err := json.Unmarshal(payload, &items); err != nil {
			return page, fmt.Errorf("decoding backend list: %w", err)
		}
		return shared.NewPage(items, int64(len(items)), 1, len(items)), nil
	}
	if err := json.Unmarshal(payload, &page); err != nil {
		return page, fmt.Errorf("decoding backend page: %w", err)
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	if page.TotalPages == 0 && page.Limit > 0 {
		page = shared.NewPage(page.Data, page.Total, page.Page, page.Limit)
	}
	return page, nil
}

// parseError builds an APIError from a non-2xx response.
func parseError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Method: method, Path: path}

	_, env := unwrap(body)
	if env != nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	} else {
		var flat struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(body, &flat) == nil {
			apiErr.Code = flat.Code
			apiErr.Message = flat.Message
			if apiErr.Message == "" {
				apiErr.Message = flat.Error
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	apiErr.Message = truncate(apiErr.Message, maxErrorMessage)
	return apiErr
}

const maxErrorMessage = 512

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
