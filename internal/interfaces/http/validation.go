package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// validate instancia compartida (es segura para uso concurrente y cachea los structs).
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Nombres de campo según el tag json para que los detalles coincidan con el cuerpo recibido.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// decimal.Decimal se valida como número: habilita gt=0, gte=0 en cantidades y montos.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// bodyError error de parseo o validación del cuerpo (siempre 400).
type bodyError struct {
	code    string
	message string
	details map[string]string
}

func (e *bodyError) Error() string { return e.message }

// bindBody parsea el JSON del request en out y lo valida con los tags validate.
func bindBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return &bodyError{code: "INVALID_BODY", message: "cuerpo inválido"}
	}
	if err := validate.Struct(out); err != nil {
		details := map[string]string{}
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				details[fieldPath(fe)] = fe.Tag()
			}
		}
		return &bodyError{code: "VALIDATION", message: "datos inválidos", details: details}
	}
	return nil
}

// fieldPath ruta del campo sin el nombre del struct raíz: "lines[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
