package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSignup(t *testing.T) {
	p, err := DecodeSignup([]byte(`{"name":"Ana","email":"a@b.com","password":"hunter22"}`))
	require.NoError(t, err)
	assert.Equal(t, &SignupPayload{Name: "Ana", Email: "a@b.com", Password: "hunter22"}, p)
}

func TestDecodeSignup_IgnoresUnknownFields(t *testing.T) {
	p, err := DecodeSignup([]byte(`{"name":"Ana","email":"a@b.com","password":"x","plan":"pro"}`))
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
}

func TestDecodeSignup_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{"not an email", `{"name":"Ana","email":"not-an-email","password":"x"}`, []string{"email"}},
		{"missing password", `{"name":"Ana","email":"a@b.com"}`, []string{"password"}},
		{"missing everything", `{}`, []string{"email", "name", "password"}},
		{"wrong types", `{"name":1,"email":"a@b.com","password":true}`, []string{"name", "password"}},
		{"not an object", `["a@b.com"]`, []string{"body"}},
		{"malformed json", `{"name":`, []string{"body"}},
		{"trailing data", `{"name":"a","email":"a@b.com","password":"x"} {}`, []string{"body"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeSignup([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, Signup, verr.Schema)

			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
				assert.NotEmpty(t, f.Message)
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestDecodeSignup_RejectsUndeliverableEmail(t *testing.T) {
	for _, email := range []string{"a@b", "a@localhost", "a@[127.0.0.1]", `"x y"@b.com`} {
		t.Run(email, func(t *testing.T) {
			body, err := json.Marshal(map[string]string{"name": "Ana", "email": email, "password": "x"})
			require.NoError(t, err)

			_, err = DecodeSignup(body)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.Has("email"))
			assert.False(t, verr.Has("name"))
		})
	}
}

func TestDecodeLogin(t *testing.T) {
	p, err := DecodeLogin([]byte(`{"email":"a@b.com","password":"pw"}`))
	require.NoError(t, err)
	assert.Equal(t, &LoginPayload{Email: "a@b.com", Password: "pw"}, p)
}

func TestDecodeLogin_Invalid(t *testing.T) {
	_, err := DecodeLogin([]byte(`{"email":"a@","password":5}`))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("email"))
	assert.True(t, verr.Has("password"))
	assert.False(t, verr.Has("name"))
	assert.Contains(t, verr.Error(), "invalid login")
}

func TestDecodeLogin_MissingFieldMessage(t *testing.T) {
	_, err := DecodeLogin([]byte(`{"password":"pw"}`))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, FieldError{Field: "email", Message: "field required"}, verr.Fields[0])
}

func TestDecodeResend(t *testing.T) {
	p, err := DecodeResend([]byte(`{"email":"a@b.com"}`))
	require.NoError(t, err)
	assert.Equal(t, &ResendPayload{Email: "a@b.com"}, p)

	for _, body := range []string{`{"email":"not-an-email"}`, `{"email":""}`, `{}`, `{"email":7}`, `nope`} {
		t.Run(body, func(t *testing.T) {
			p, err := DecodeResend([]byte(body))
			assert.Nil(t, p)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, Resend, verr.Schema)
			assert.NotEmpty(t, verr.Fields)
			assert.Contains(t, verr.Error(), "invalid resend")
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("profile", map[string]any{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestDocument(t *testing.T) {
	for _, name := range []string{Signup, Login, Resend} {
		raw, err := Document(name)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Equal(t, "object", doc["type"])
		assert.Contains(t, doc["required"], "email")
	}

	_, err := Document("missing")
	assert.Error(t, err)
}

func TestValidationErrorJSON(t *testing.T) {
	verr := &ValidationError{Schema: Login, Fields: []FieldError{{Field: "email", Message: "field required"}}}
	b, err := json.Marshal(verr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":[{"field":"email","message":"field required"}]}`, string(b))
}

func TestPayloadValidate(t *testing.T) {
	assert.NoError(t, SignupPayload{Name: "Ana", Email: "ana@example.com", Password: "pw"}.Validate())
	assert.NoError(t, LoginPayload{Email: "ana@example.com", Password: "pw"}.Validate())

	err := SignupPayload{Name: "Ana", Email: "ana", Password: "pw"}.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, Signup, verr.Schema)
	assert.True(t, verr.Has("email"))

	err = LoginPayload{Email: "not-an-email", Password: "pw"}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, Login, verr.Schema)
	assert.True(t, verr.Has("email"))
}
