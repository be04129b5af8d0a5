package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/Insumos-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los errores usan el nombre del campo tal como llega en el JSON o en la query.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// validateStruct aplica las etiquetas validate y devuelve el primer error como domain.ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Invalid("", err.Error())
	}
	fe := verrs[0]
	return domain.Invalid(fieldPath(fe.Namespace()), message(fe))
}

// fieldPath quita el nombre del struct raíz: "CommitGuideRequest.lines[0].quantity" → "lines[0].quantity".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "requerido"
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return "longitud mínima " + fe.Param()
		}
		return "debe ser al menos " + fe.Param()
	case "max":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return "longitud máxima " + fe.Param()
		}
		return "debe ser como máximo " + fe.Param()
	case "oneof":
		return "valor no permitido (opciones: " + fe.Param() + ")"
	case "url":
		return "URL inválida"
	case "datetime":
		return "fecha inválida (formato " + fe.Param() + ")"
	}
	return "inválido (" + fe.Tag() + ")"
}
