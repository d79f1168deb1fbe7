package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

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
	validate.RegisterStructValidation(validateStorage, Config{})
	if err := validate.RegisterTranslation("required_for_driver", trans, func(ut ut.Translator) error {
		return ut.Add("required_for_driver", "{0} is required for the {1} storage driver", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required_for_driver", fe.Field(), fe.Param())
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register required_for_driver translation: %w", err)
	}

	return validate, trans, nil
}

// validateStorage checks the settings the selected storage driver depends on.
func validateStorage(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	switch cfg.Storage.Driver {
	case DriverYAML:
		if cfg.Storage.YAMLDirectory == "" {
			sl.ReportError(cfg.Storage.YAMLDirectory, "yaml_directory", "YAMLDirectory", "required_for_driver", DriverYAML)
		}
	case DriverBolt:
		if cfg.Storage.BoltPath == "" {
			sl.ReportError(cfg.Storage.BoltPath, "bolt_path", "BoltPath", "required_for_driver", DriverBolt)
		}
	case DriverSQLite:
		if cfg.Database.SQLitePath == "" {
			sl.ReportError(cfg.Database.SQLitePath, "sqlite_path", "SQLitePath", "required_for_driver", DriverSQLite)
		}
	case DriverMySQL:
		if cfg.Database.Host == "" {
			sl.ReportError(cfg.Database.Host, "host", "Host", "required_for_driver", DriverMySQL)
		}
		if cfg.Database.Database == "" {
			sl.ReportError(cfg.Database.Database, "database", "Database", "required_for_driver", DriverMySQL)
		}
	}
}
