package shelf

import (
	"fmt"
	"strings"

	"gameshelf/backend/pkg/failure"
)

func invalid(field, message string) error {
	return &failure.Error{
		Kind:    failure.ValidationFailure,
		Message: "Validation failed",
		Fields:  map[string]string{field: message},
	}
}

func requireID(field string, id uint) error {
	if id == 0 {
		return invalid(field, "is required")
	}
	return nil
}

func requirePosition(field string, pos int) error {
	if !ValidPosition(pos) {
		return invalid(field, fmt.Sprintf("must be between 1 and %d", HallOfFameSize))
	}
	return nil
}

func requireListName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", failure.New(failure.EmptyName, "list name is empty")
	}
	return trimmed, nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
