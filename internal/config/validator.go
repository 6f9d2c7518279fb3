package config

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type customRule struct {
	tag     string
	message string
	fn      validator.Func
}

var customRules = []customRule{
	// Cache and output directories are relative or absolute paths, never URLs
	{tag: "localpath", message: "{0} must be a local filesystem path", fn: isLocalPath},
	{tag: "origin", message: "{0} must be * or a scheme://host[:port] origin", fn: isOrigin},
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for _, rule := range customRules {
		if err := registerRule(validate, trans, rule); err != nil {
			return nil, nil, err
		}
	}
	return validate, trans, nil
}

func registerRule(validate *validator.Validate, trans ut.Translator, rule customRule) error {
	if err := validate.RegisterValidation(rule.tag, rule.fn); err != nil {
		return fmt.Errorf("failed to register %s validation: %w", rule.tag, err)
	}
	if err := validate.RegisterTranslation(rule.tag, trans, func(ut ut.Translator) error {
		return ut.Add(rule.tag, rule.message, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(rule.tag, strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return fmt.Errorf("failed to register %s translation: %w", rule.tag, err)
	}
	return nil
}

func isLocalPath(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return true
	}
	return !strings.Contains(path, "://")
}

func isOrigin(fl validator.FieldLevel) bool {
	origin := fl.Field().String()
	if origin == "*" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" && (u.Path == "" || u.Path == "/") && u.RawQuery == ""
}
