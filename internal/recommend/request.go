package recommend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/edgard/bookrec/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Request is one validated recommendation query.
type Request struct {
	Genre       string `json:"genre"       validate:"required"`
	Preferences string `json:"preferences" validate:"required"`
}

// NewRequest trims both fields and validates the result. Whitespace-only
// values count as missing.
func NewRequest(genre, preferences string) (Request, error) {
	req := Request{
		Genre:       strings.TrimSpace(genre),
		Preferences: strings.TrimSpace(preferences),
	}
	return req, req.Validate()
}

// Validate reports missing fields as a validation error.
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError("invalid request", err)
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, strings.ToLower(fe.Field()))
	}
	return apperrors.NewValidationError(fmt.Sprintf("missing required field(s): %s", strings.Join(missing, ", ")), nil)
}
