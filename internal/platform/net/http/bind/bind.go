// Package bind decodes and validates JSON request bodies
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"

	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ValidatorSvc holds the shared validator and its english translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// shortMessages replace the stock translations for tags the API uses a lot
var shortMessages = map[string]string{
	"min":     "{0} must be at least {1}",
	"max":     "{0} must be at most {1}",
	"qkey":    "{0} must not contain whitespace or any of & = ? #",
	"httpurl": "{0} must be an absolute http or https URL",
}

// Get returns the validator, building it on first use
// Field names in messages come from json tags
func Get() *ValidatorSvc {
	vOnce.Do(func() {
		loc := en.New()
		trans, _ := ut.New(loc, loc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		_ = v.RegisterValidation("qkey", queryKey)
		_ = v.RegisterValidation("httpurl", httpURL)
		for tag, text := range shortMessages {
			registerMessage(v, trans, tag, text)
		}
		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// queryKey accepts strings usable verbatim as a query parameter name
func queryKey(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return !strings.ContainsAny(s, "&=?# \t\r\n")
}

func httpURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// JSONOptions tunes ParseJSON
type JSONOptions struct {
	MaxBytes        int64 // 0 means unlimited
	DisallowUnknown bool
	AllowEmptyBody  bool
}

// DefaultJSONOptions caps bodies at 1MB and rejects unknown fields
var DefaultJSONOptions = JSONOptions{MaxBytes: 1 << 20, DisallowUnknown: true}

// ParseJSON decodes the body into T and validates it
// Decode problems are ErrorCodeJSON, rule failures ErrorCodeValidation with the json field attached
// An empty body on GET, HEAD, DELETE or OPTIONS yields the zero T
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	o := DefaultJSONOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Warn().Err(err).Msg("request body close failed")
		}
	}()

	body, err := peek(r.Body)
	if err != nil {
		return zero, perr.JSONErrf("read body: %v", err)
	}
	if body == nil {
		if o.AllowEmptyBody || bodiless(r.Method) {
			return zero, nil
		}
		return zero, perr.JSONErrf("empty body")
	}
	if o.MaxBytes > 0 {
		body = io.LimitReader(body, o.MaxBytes)
	}

	dec := json.NewDecoder(body)
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}
	var dst T
	if err := dec.Decode(&dst); err != nil {
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Get().Validator.Struct(dst); err != nil {
		var inv *validator.InvalidValidationError
		if errors.As(err, &inv) {
			logger.Get().Error().Err(inv).Msg("validator misuse")
			return zero, perr.JSONErrf("validation error")
		}
		field, msg := ValidationFieldAndMessage(err)
		return zero, perr.WithField(perr.Validationf("%s", msg), field)
	}
	return dst, nil
}

// peek returns nil for an empty body, otherwise a reader that still yields every byte
func peek(rc io.Reader) (io.Reader, error) {
	var first [1]byte
	n, err := rc.Read(first[:])
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return io.MultiReader(bytes.NewReader(first[:n]), rc), nil
}

func bodiless(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

// ValidationFieldAndMessage returns the first failing field and its translated message
func ValidationFieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fe.Field(), fe.Translate(Get().Translator)
	}
	return "", err.Error()
}
