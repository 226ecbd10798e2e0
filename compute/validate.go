package compute

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/go-playground/validator.v9"
)

var check = validator.New()

// resource names follow RFC1035: lowercase letter first, then lowercase
// letters, digits and hyphens, ending with a letter or digit.
var nameRE = regexp.MustCompile(`^[a-z]([-a-z0-9]{0,61}[a-z0-9])?$`)

func mustRegister(err error) {
	if err != nil {
		panic(fmt.Sprintf("Register custom validator: %v", err))
	}
}

func init() {
	mustRegister(check.RegisterValidation("resourcename", func(fl validator.FieldLevel) bool {
		return nameRE.MatchString(fl.Field().String())
	}))
}

var once sync.Once
var formats map[string]string

// validate checks a rule before it is sent, returning a readable message for
// the first violation.
func (r *Rule) validate() error {
	err := check.Struct(r)
	if err == nil {
		return nil
	}
	once.Do(initFormatters)
	errs := err.(validator.ValidationErrors)
	fe := errs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Rule.")
	format, ok := formats[fe.Tag()]
	if !ok {
		return fmt.Errorf("%s: invalid value", field)
	}
	if !strings.Contains(format, "%") {
		return fmt.Errorf("%s: %s", field, format)
	}
	return fmt.Errorf("%s: %s", field, fmt.Sprintf(format, fe.Param()))
}

func initFormatters() {
	formats = map[string]string{
		"required": "must be set",
		"oneof":    "must be one of: [%v]",
		"cidr":     "must be a valid CIDR block",

		// custom
		"resourcename": "must start with a lowercase letter followed by up to 62 lowercase letters, digits or hyphens, and cannot end with a hyphen",
	}
}
