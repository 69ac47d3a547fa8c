// Package validate envuelve go-playground/validator con las reglas y mensajes de la tienda.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxPasswordBytes límite de bcrypt: los bytes posteriores se ignoran al hashear.
const MaxPasswordBytes = 72

// Validator instancia compartida del validador.
type Validator struct {
	validate *validator.Validate
}

// FieldError campo inválido con un mensaje listo para mostrar.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

var (
	instance *Validator
	once     sync.Once
)

// Get devuelve el validador global, inicializándolo en el primer uso.
func Get() *Validator {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New construye un validador con las reglas propias registradas.
func New() *Validator {
	v := validator.New()

	// Los campos se nombran como en el JSON para que los mensajes coincidan con la API.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("bcryptmax", validateBcryptMax)

	return &Validator{validate: v}
}

// Struct valida s y devuelve todos los campos inválidos en orden de declaración.
func (v *Validator) Struct(s interface{}) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Field: "", Message: "Invalid request format"}}
	}
	out := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, FieldError{Field: e.Field(), Message: message(e)})
	}
	return out
}

// First valida s y devuelve solo el primer error, o nil.
func (v *Validator) First(s interface{}) *FieldError {
	errs := v.Struct(s)
	if len(errs) == 0 {
		return nil
	}
	return &errs[0]
}

// Var valida un valor suelto contra un tag.
func (v *Validator) Var(field string, value interface{}, tag string) *FieldError {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return &FieldError{Field: field, Message: messageFor(label(field), validationErrors[0])}
	}
	return &FieldError{Field: field, Message: "Invalid value"}
}

func message(e validator.FieldError) string {
	return messageFor(label(e.Field()), e)
}

func messageFor(name string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return "Invalid email format"
	case "bcryptmax":
		return fmt.Sprintf("%s cannot be more than %d bytes", name, MaxPasswordBytes)
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", name, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", name, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, e.Param())
	case "gte":
		if e.Param() == "0" {
			return fmt.Sprintf("%s cannot be negative", name)
		}
		return fmt.Sprintf("%s must be at least %s", name, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(e.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// label "new_password" -> "New password".
func label(field string) string {
	if field == "" {
		return "Value"
	}
	s := strings.ReplaceAll(field, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

func decimalValue(v reflect.Value) interface{} {
	if d, ok := v.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateBcryptMax(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPasswordBytes
}
