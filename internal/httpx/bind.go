package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindRequest populates the request context from the declared schema:
// path params (`param` tags), query values (`query` tags), and a JSON
// body, each validated with `validate` tags.
func bindRequest(r *http.Request, schema Schema, rc *RequestContext) error {
	if schema.Params != nil {
		v := schema.Params()
		if err := bindStrings(v, "param", func(name string) string {
			return chi.URLParam(r, name)
		}); err != nil {
			return BadRequest(err.Error())
		}
		if err := checkStruct(v); err != nil {
			return err
		}
		rc.Params = v
	}

	if schema.Query != nil {
		v := schema.Query()
		query := r.URL.Query()
		if err := bindStrings(v, "query", query.Get); err != nil {
			return BadRequest(err.Error())
		}
		if err := checkStruct(v); err != nil {
			return err
		}
		rc.Query = v
	}

	if schema.Body != nil {
		v := schema.Body()
		if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return BadRequest("invalid JSON body")
		}
		if err := checkStruct(v); err != nil {
			return err
		}
		rc.Body = v
	}

	return nil
}

// bindStrings fills tagged string-ish struct fields from a lookup
// function. Supported field kinds: string, bool, ints, floats.
func bindStrings(dst any, tag string, get func(name string) string) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("schema section must be a struct pointer, got %T", dst)
	}

	elem := v.Elem()
	t := elem.Type()

	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get(tag)
		if name == "" || name == "-" {
			continue
		}

		raw := get(name)
		if raw == "" {
			continue
		}

		field := elem.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("%s must be a boolean", name)
			}
			field.SetBool(b)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("%s must be an integer", name)
			}
			field.SetInt(n)
		case reflect.Float32, reflect.Float64:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("%s must be a number", name)
			}
			field.SetFloat(f)
		default:
			return fmt.Errorf("unsupported field kind %s for %s", field.Kind(), name)
		}
	}

	return nil
}

// checkStruct runs validator tag rules, converting violations into the
// structured 400 field-error payload.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return BadRequest(err.Error())
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = violationMessage(fe)
	}

	return ValidationFailed(fields)
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
