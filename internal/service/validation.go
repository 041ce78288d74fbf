package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"marketplace-service/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validate reads the same `binding` tags gin uses, so bound requests and requests
// built in code go through identical rules.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRequest runs struct validation on req.
func ValidateRequest(req interface{}) error {
	return FieldErrorsFrom(validate.Struct(req))
}

// FieldErrorsFrom converts validator failures into a validation error with one detail
// per field. Other errors are returned as a bad request.
func FieldErrorsFrom(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.BadRequest("Invalid request body")
	}

	var details apperr.FieldErrors
	for _, fe := range verrs {
		details.Add(fieldPath(fe), fieldMessage(fe))
	}
	return details.Err()
}

// fieldPath drops the top-level struct name from the namespace: items[0].quantity.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed the %s rule", fe.Tag())
	}
}

// checkNonNegative records a detail when d is below zero.
func checkNonNegative(details *apperr.FieldErrors, field string, d decimal.Decimal) {
	if d.IsNegative() {
		details.Add(field, "must be greater than or equal to 0")
	}
}

// mergeValidation appends the field details of a validation error to details and
// returns any other error unchanged.
func mergeValidation(details *apperr.FieldErrors, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind == apperr.KindValidation {
		*details = append(*details, ae.Details...)
		return nil
	}
	return err
}
