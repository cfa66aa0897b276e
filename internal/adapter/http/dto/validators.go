package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"wallet-service/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func init() {
	// Request bodies are strict: unknown fields are a 400.
	binding.EnableDecoderDisallowUnknownFields = true

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("positive_money", validatePositiveMoney)
	}
}

// decimalValue lets validator treat decimal.Decimal as its string form.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// validateMoney accepts a balance: zero or positive, two decimal places,
// at most 9999999999.99.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return domain.ValidateBalance(d) == nil
}

// validatePositiveMoney is validateMoney without zero.
func validatePositiveMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return domain.ValidateAmount(d) == nil
}

// BindingMessage turns a ShouldBindJSON error into a client-facing message.
func BindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "money":
		return fmt.Sprintf("%s must be a non-negative amount with at most 2 decimal places and no more than %s", fe.Field(), domain.MaxMoney.StringFixed(domain.MoneyScale))
	case "positive_money":
		return fmt.Sprintf("%s must be greater than zero with at most 2 decimal places and no more than %s", fe.Field(), domain.MaxMoney.StringFixed(domain.MoneyScale))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
