// Package validate checks submitted forms before they reach a service.
// Each validator returns a Result whose Errors map field names to
// human-readable messages; nothing here touches storage.
package validate

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Result is the outcome of validating one form.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (r *Result) addError(field, message string) {
	if r.Errors == nil {
		r.Errors = map[string]string{}
	}
	r.Errors[field] = message
	r.Valid = false
}

var vld = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Resolve field names from the json tag so error maps match the
	// wire names clients submit.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// posamount: a decimal string, strictly positive, at most 2 decimals.
	_ = v.RegisterValidation("posamount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return d.IsPositive() && d.Exponent() >= -2
	})
	// dateymd: a calendar date in YYYY-MM-DD form.
	_ = v.RegisterValidation("dateymd", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	return v
}

// check runs struct validation and folds violations into a Result.
func check(form any) Result {
	err := vld.Struct(form)
	if err == nil {
		return Result{Valid: true}
	}
	res := Result{Valid: false, Errors: map[string]string{}}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors["form"] = "invalid form payload"
		return res
	}
	for _, fe := range verrs {
		res.Errors[fe.Field()] = messageFor(fe)
	}
	return res
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "uuid4", "uuid":
		return "must be a valid identifier"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "posamount":
		return "must be a positive amount with up to two decimals"
	case "dateymd":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "is invalid"
	}
}
