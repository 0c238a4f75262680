package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/p7r0x7/md5trace/render"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// ValidationError describes one invalid field.
type ValidationError struct {
	FieldPath string
	Message   string
}

// ValidationErrors collects every invalid field of a Config.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("template_tags", validateTemplateTags); err != nil {
		panic(err)
	}
	/* Report fields by their TOML names. */
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks every field of c and returns ValidationErrors listing all problems found.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		/* Namespace is "Config.render.style"; drop the root type name. */
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		out = append(out, ValidationError{FieldPath: path, Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "hostname_port":
		return "must be a host:port pair"
	case "template_tags":
		return "uses an unknown or unterminated {{tag}}"
	case "gte", "lte":
		return fmt.Sprintf("is out of range (%s %s)", fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

/* validateTemplateTags accepts templates whose placeholders are all known to the renderer. */
func validateTemplateTags(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for {
		start := strings.Index(s, "{{")
		if start < 0 {
			return !strings.Contains(s, "}}")
		}
		if strings.Contains(s[:start], "}}") {
			return false
		}
		end := strings.Index(s[start+2:], "}}")
		if end < 0 {
			return false
		}
		if !render.IsTag(s[start+2 : start+2+end]) {
			return false
		}
		s = s[start+2+end+2:]
	}
}
