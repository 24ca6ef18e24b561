// Package schema validates the signup, login and resend request bodies.
//
// Each payload is described by an embedded JSON Schema document; the Go
// structs only carry the decoded values.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fittrack/fittrack/mail"
)

// Schema names.
const (
	Signup = "signup"
	Login  = "login"
	Resend = "resend"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// SignupPayload is the body of a signup request.
type SignupPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload is the body of a login request.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResendPayload is the body of a verification resend request.
type ResendPayload struct {
	Email string `json:"email"`
}

// Validate checks p against the signup schema.
func (p SignupPayload) Validate() error {
	return Validate(Signup, map[string]any{
		"name":     p.Name,
		"email":    p.Email,
		"password": p.Password,
	})
}

// Validate checks p against the login schema.
func (p LoginPayload) Validate() error {
	return Validate(Login, map[string]any{
		"email":    p.Email,
		"password": p.Password,
	})
}

var (
	compileOnce sync.Once
	compiled    map[string]*jschema.Schema
	compileErr  error

	printer = message.NewPrinter(language.English)

	// emailFormat replaces the library's RFC 5321 check with the rule the
	// mail sender applies, so every accepted address can receive mail.
	emailFormat = &jschema.Format{
		Name: "email",
		Validate: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			return mail.CheckAddress(s)
		},
	}
)

// Document returns the raw JSON Schema document for name.
func Document(name string) ([]byte, error) {
	return schemaFS.ReadFile("schemas/" + name + ".schema.json")
}

// compileAll compiles every embedded schema with format assertions enabled.
func compileAll() (map[string]*jschema.Schema, error) {
	compileOnce.Do(func() {
		c := jschema.NewCompiler()
		c.AssertFormat()
		c.RegisterFormat(emailFormat)

		out := make(map[string]*jschema.Schema, 3)
		for _, name := range []string{Signup, Login, Resend} {
			raw, err := Document(name)
			if err != nil {
				compileErr = fmt.Errorf("read %s schema: %w", name, err)
				return
			}
			doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				compileErr = fmt.Errorf("parse %s schema: %w", name, err)
				return
			}
			loc := name + ".schema.json"
			if err := c.AddResource(loc, doc); err != nil {
				compileErr = fmt.Errorf("add %s schema: %w", name, err)
				return
			}
			sch, err := c.Compile(loc)
			if err != nil {
				compileErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			out[name] = sch
		}
		compiled = out
	})
	return compiled, compileErr
}

// DecodeSignup validates data against the signup schema and decodes it.
func DecodeSignup(data []byte) (*SignupPayload, error) {
	var p SignupPayload
	if err := decode(Signup, data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DecodeLogin validates data against the login schema and decodes it.
func DecodeLogin(data []byte) (*LoginPayload, error) {
	var p LoginPayload
	if err := decode(Login, data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DecodeResend validates data against the resend schema and decodes it.
func DecodeResend(data []byte) (*ResendPayload, error) {
	var p ResendPayload
	if err := decode(Resend, data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks an already-decoded JSON value against the named schema.
func Validate(name string, instance any) error {
	schemas, err := compileAll()
	if err != nil {
		return err
	}
	sch, ok := schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	err = sch.Validate(instance)
	if err == nil {
		return nil
	}

	var verr *jschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	return &ValidationError{Schema: name, Fields: flatten(verr)}
}

func decode(name string, data []byte, out any) error {
	instance, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &ValidationError{
			Schema: name,
			Fields: []FieldError{{Field: "body", Message: "malformed JSON: " + err.Error()}},
		}
	}

	if err := Validate(name, instance); err != nil {
		return err
	}

	// The schema has already accepted the document, so this only copies values.
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", name, err)
	}
	return nil
}

// flatten collects the leaf causes of a validation error as field errors.
func flatten(verr *jschema.ValidationError) []FieldError {
	var out []FieldError
	var walk func(e *jschema.ValidationError)
	walk = func(e *jschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}

		if req, ok := e.ErrorKind.(*kind.Required); ok {
			for _, missing := range req.Missing {
				out = append(out, FieldError{
					Field:   fieldName(append(slices.Clone(e.InstanceLocation), missing)),
					Message: "field required",
				})
			}
			return
		}

		out = append(out, FieldError{
			Field:   fieldName(e.InstanceLocation),
			Message: e.ErrorKind.LocalizedString(printer),
		})
	}
	walk(verr)

	slices.SortStableFunc(out, func(a, b FieldError) int {
		return strings.Compare(a.Field, b.Field)
	})
	return out
}

func fieldName(loc []string) string {
	if len(loc) == 0 {
		return "body"
	}
	return strings.Join(loc, ".")
}
