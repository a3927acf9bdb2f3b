package validation

import (
	"errors"
	"fmt"
	"strings"

	"KinderTube/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register adds the custom tags to gin's validator: pin, gender and category.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"pin": func(fl validator.FieldLevel) bool {
			return models.IsValidSixDigitCode(fl.Field().String())
		},
		"gender": func(fl validator.FieldLevel) bool {
			return models.Gender(fl.Field().String()).Valid()
		},
		"category": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || models.Category(s).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// Message turns binding errors into a short client message.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldMessage(fe))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "pin":
		return "six digit code must be exactly 6 digits"
	case "gender":
		return "gender must be one of male, female, other, prefer-not-to-say"
	case "category":
		return "unknown category"
	case "email":
		return "invalid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}
