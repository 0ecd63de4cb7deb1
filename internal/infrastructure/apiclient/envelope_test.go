package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID    string `json:"id" validate:"required"`
	Price string `json:"price"`
}

type testUser struct {
	ID    string `json:"id" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func body(s string) *Response {
	return &Response{StatusCode: 200, Body: []byte(s)}
}

func TestDecode(t *testing.T) {
	t.Run("returns data", func(t *testing.T) {
		item, err := Decode[testItem](body(`{"success":true,"data":{"id":"p1","price":"9.99"}}`))
		require.NoError(t, err)
		assert.Equal(t, "p1", item.ID)
	})

	t.Run("slice data is validated per element", func(t *testing.T) {
		_, err := Decode[[]testItem](body(`{"success":true,"data":[{"id":"p1"},{"price":"1"}]}`))
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("success false carries message", func(t *testing.T) {
		_, err := Decode[testItem](body(`{"success":false,"message":"Sin stock"}`))
		assert.ErrorIs(t, err, ErrUnsuccessful)
		assert.Equal(t, "Sin stock", Message(err, ""))
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := Decode[testItem](body(`<html>`))
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := Decode[testItem](body(``))
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("missing required field", func(t *testing.T) {
		_, err := Decode[testItem](body(`{"success":true,"data":{"price":"1"}}`))
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestDecodePaged(t *testing.T) {
	page, err := DecodePaged[testItem](body(`{
		"success": true,
		"data": [{"id":"a"},{"id":"b"}],
		"pagination": {"page":1,"limit":10,"total":2,"totalPages":1}
	}`))
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 2, page.Pagination.Total)

	_, err = DecodePaged[testItem](body(`{"success":true,"data":[],"pagination":{"total":-1}}`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeAuth(t *testing.T) {
	env, err := DecodeAuth[testUser](body(`{"success":true,"token":"jwt","user":{"id":"u1","email":"ana@example.com"}}`))
	require.NoError(t, err)
	assert.Equal(t, "jwt", env.Token)
	assert.Equal(t, "u1", env.User.ID)

	_, err = DecodeAuth[testUser](body(`{"success":true,"user":{"id":"u1","email":"ana@example.com"}}`))
	assert.ErrorIs(t, err, ErrMalformedResponse, "token is mandatory")

	_, err = DecodeAuth[testUser](body(`{"success":true,"token":"jwt","user":{"id":"u1","email":"not-an-email"}}`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeAck(t *testing.T) {
	assert.NoError(t, DecodeAck(body(`{"success":true,"message":"ok"}`)))
	assert.ErrorIs(t, DecodeAck(body(`{"success":false}`)), ErrUnsuccessful)

	t.Run("empty 2xx bodies acknowledge", func(t *testing.T) {
		assert.NoError(t, DecodeAck(&Response{StatusCode: 204}))
		assert.NoError(t, DecodeAck(&Response{StatusCode: 200, Body: []byte(" \n")}))
	})

	t.Run("empty body outside 2xx is malformed", func(t *testing.T) {
		assert.ErrorIs(t, DecodeAck(&Response{StatusCode: 302}), ErrMalformedResponse)
		assert.ErrorIs(t, DecodeAck(nil), ErrMalformedResponse)
	})

	t.Run("204 with a failure envelope is still rejected", func(t *testing.T) {
		resp := &Response{StatusCode: 204, Body: []byte(`{"success":false,"message":"nope"}`)}
		assert.ErrorIs(t, DecodeAck(resp), ErrUnsuccessful)
	})
}

func TestServerMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"message":"m"}`, "m"},
		{`{"error":"e"}`, "e"},
		{`{"error":{"message":"nested"}}`, "nested"},
		{`{"msg":"short"}`, "short"},
		{`not json`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, serverMessage([]byte(tt.body)), tt.body)
	}
}

func TestDecodeFlat(t *testing.T) {
	type stats struct {
		Total int `json:"total" validate:"gte=0"`
	}

	got, err := DecodeFlat[stats](body(`{"success":true,"total":4}`))
	require.NoError(t, err)
	assert.Equal(t, 4, got.Total)

	got, err = DecodeFlat[stats](body(`{"success":true,"data":{"total":9}}`))
	require.NoError(t, err)
	assert.Equal(t, 9, got.Total)

	got, err = DecodeFlat[stats](body(`{"total":1}`))
	require.NoError(t, err)
	assert.Equal(t, 1, got.Total)

	_, err = DecodeFlat[stats](body(`{"success":false,"message":"denied"}`))
	assert.ErrorIs(t, err, ErrUnsuccessful)

	_, err = DecodeFlat[stats](body(`{"total":-2}`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
