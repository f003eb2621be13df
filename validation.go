package logging

import (
	stderrs "errors"
	"strings"
	"sync"

	"github.com/Station-Manager/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// dialTag validates a 0-10 verbosity or error dial.
const dialTag = "dial"

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(dialTag, func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= minDial && n <= maxDial
	})
	return v
}

func validateConfig(cfg *Config) error {
	const op errors.Op = "logging.validateConfig"
	if cfg == nil {
		return errors.New(op).Msg(errMsgNilConfig)
	}

	validateOnce.Do(func() {
		validate = newValidator()
	})

	if err := validate.Struct(cfg); err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid + invalidFields(err))
	}

	return nil
}

// invalidFields lists the offending fields, e.g. " (DebugLevel: dial, LogDir: required)".
func invalidFields(err error) string {
	var verrs validator.ValidationErrors
	if !stderrs.As(err, &verrs) || len(verrs) == 0 {
		return emptyString
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+": "+fe.Tag())
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
