package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
)

// validate is the shared validator instance. It caches struct metadata and
// is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateCourse checks the struct tags on Course and reports the first
// failing field in a readable form.
func validateCourse(c Course) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidCatalog, err, "course %q", c.ID)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return cgerrors.Wrap(cgerrors.ErrCodeInvalidCatalog, ErrInvalidCourse, "course %q: %s", c.ID, strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", field, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
