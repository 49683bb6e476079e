package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// ValidationError describes one invalid field
type ValidationError struct {
	Field   string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors collects every invalid field
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("%d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

func validate(c *Config) error {
	var errs ValidationErrors

	if err := structValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{Field: fe.Field(), Message: describe(fe)})
		}
	}

	if c.PreviewTimeout > MaxPreviewTimeout {
		errs = append(errs, ValidationError{Field: "PreviewTimeout", Message: fmt.Sprintf("must be at most %s", MaxPreviewTimeout)})
	}
	if c.Concurrency > MaxConcurrency {
		errs = append(errs, ValidationError{Field: "Concurrency", Message: fmt.Sprintf("must be at most %d", MaxConcurrency)})
	}
	if c.Proxy != "" {
		if u, err := url.Parse(c.Proxy); err == nil {
			switch u.Scheme {
			case "http", "https", "socks5":
			default:
				errs = append(errs, ValidationError{Field: "Proxy", Message: "scheme must be http, https or socks5"})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "url":
		return "must be a valid URL"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
