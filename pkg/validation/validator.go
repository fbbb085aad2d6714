package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pmihaylov/user-management-api/internal/domain/entity"
	"github.com/pmihaylov/user-management-api/pkg/helpers"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers the region-aware "phone" validation and aliases for the
//   name and password length policies.
func Init(phoneRegion string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator engine unavailable")
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return helpers.ValidPhoneNumber(fl.Field().String(), phoneRegion)
	}); err != nil {
		return err
	}
	// Let "required" see calendar dates as time values instead of diving
	// into the struct.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(entity.Date); ok {
			return d.Time
		}
		return nil
	}, entity.Date{})
	v.RegisterAlias("name", "min=3,max=20") // first/last name length policy
	v.RegisterAlias("pwd", "min=8,max=20")  // password length policy
	return nil
}

// ToDetails converts binding errors into a map[field]message for API error bodies.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

// ToLines renders binding errors as one "<field>: <message>" line per field,
// sorted by field name for stable output.
func ToLines(err error) []string {
	details := ToDetails(err)
	if details == nil {
		return nil
	}
	lines := make([]string, 0, len(details))
	for field, msg := range details {
		lines = append(lines, field+": "+msg)
	}
	sort.Strings(lines)
	return lines
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "phone":
		return "must be a valid phone number"
	case "uuid":
		return "must be a valid UUID"
	case "name":
		return "must be between 3 and 20 characters"
	case "pwd":
		return "must be between 8 and 20 characters"
	case "min":
		if param != "" {
			return "must be at least " + param + " characters long"
		}
		return "too small"
	case "max":
		if param != "" {
			return "must be at most " + param + " characters long"
		}
		return "too large"
	case "datetime":
		if param != "" {
			return "must match date format: " + param
		}
		return "must be a valid date"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}
