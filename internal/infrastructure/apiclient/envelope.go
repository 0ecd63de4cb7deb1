package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Envelope is the standard {success, message, data} response body.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Pagination is the pagination block of list responses.
type Pagination struct {
	Page       int `json:"page" validate:"gte=0"`
	Limit      int `json:"limit" validate:"gte=0"`
	Total      int `json:"total" validate:"gte=0"`
	TotalPages int `json:"totalPages" validate:"gte=0"`
}

// Paged is a list response with pagination.
type Paged[T any] struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message,omitempty"`
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// AuthEnvelope is the login and register response body, which carries the
// token and user at the top level instead of under data.
type AuthEnvelope[U any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
	User    U      `json:"user"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Decode parses resp as an Envelope[T], rejecting success:false and
// payloads that fail their validate tags.
func Decode[T any](resp *Response) (T, error) {
	var env Envelope[T]
	if err := decodeInto(resp, &env); err != nil {
		var zero T
		return zero, err
	}
	if !env.Success {
		var zero T
		return zero, &UnsuccessfulError{Message: env.Message}
	}
	if err := validatePayload(env.Data); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

// DecodePaged parses resp as a Paged[T].
func DecodePaged[T any](resp *Response) (Paged[T], error) {
	var env Paged[T]
	if err := decodeInto(resp, &env); err != nil {
		return Paged[T]{}, err
	}
	if !env.Success {
		return Paged[T]{}, &UnsuccessfulError{Message: env.Message}
	}
	if err := validatePayload(env.Data); err != nil {
		return Paged[T]{}, err
	}
	if err := validatePayload(env.Pagination); err != nil {
		return Paged[T]{}, err
	}
	return env, nil
}

// DecodeAuth parses a login or register response. The token must be present.
func DecodeAuth[U any](resp *Response) (AuthEnvelope[U], error) {
	var env AuthEnvelope[U]
	if err := decodeInto(resp, &env); err != nil {
		return AuthEnvelope[U]{}, err
	}
	if !env.Success {
		return AuthEnvelope[U]{}, &UnsuccessfulError{Message: env.Message}
	}
	if env.Token == "" {
		return AuthEnvelope[U]{}, fmt.Errorf("%w: missing token", ErrMalformedResponse)
	}
	if err := validatePayload(env.User); err != nil {
		return AuthEnvelope[U]{}, err
	}
	return env, nil
}

// DecodeFlat parses bodies that carry their payload at the top level, such
// as the admin stats routes. A data object is used instead when present.
func DecodeFlat[T any](resp *Response) (T, error) {
	var zero T
	var head struct {
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := decodeInto(resp, &head); err != nil {
		return zero, err
	}
	if head.Success != nil && !*head.Success {
		return zero, &UnsuccessfulError{Message: head.Message}
	}

	raw := resp.Body
	if len(head.Data) > 0 && head.Data[0] == '{' {
		raw = head.Data
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := validatePayload(out); err != nil {
		return zero, err
	}
	return out, nil
}

// DecodeAck parses an envelope whose data is irrelevant. A 2xx without a
// body, such as 204 No Content, is an acknowledgement too.
func DecodeAck(resp *Response) error {
	if resp != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 &&
		len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	_, err := Decode[json.RawMessage](resp)
	return err
}

func decodeInto(resp *Response, v any) error {
	if resp == nil || len(resp.Body) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// validatePayload runs struct validation on v, or on each element when v is
// a slice of structs.
func validatePayload(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	var err error
	switch rv.Kind() {
	case reflect.Struct:
		err = Validator().Struct(rv.Interface())
	case reflect.Slice, reflect.Array:
		elem := rv.Type().Elem()
		for elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct {
			return nil
		}
		for i := 0; i < rv.Len(); i++ {
			if err = validatePayload(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// serverMessage pulls a human message out of an error body, checking the
// fields the API uses.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var head struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
		Msg     string          `json:"msg"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return ""
	}
	if head.Message != "" {
		return head.Message
	}
	if len(head.Error) > 0 {
		var s string
		if err := json.Unmarshal(head.Error, &s); err == nil {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(head.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return head.Msg
}
