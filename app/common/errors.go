package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mahesh-hegde/barplot/app/plotfile"
)

type UserVisibleError struct {
	HttpCode int
	Message  string
}

func (e *UserVisibleError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.HttpCode, e.Message)
}

func NewUserVisibleError(httpCode int, message string) *UserVisibleError {
	return &UserVisibleError{
		HttpCode: httpCode,
		Message:  message,
	}
}

func WrapErrorForResponse(err error, message string) error {
	if e, ok := err.(*UserVisibleError); ok {
		return &UserVisibleError{
			HttpCode: e.HttpCode,
			Message:  fmt.Sprintf("%s: %s", message, e.Message),
		}
	}
	return err
}

// FromParseError turns a plot file error into something safe to show a
// client. Syntax problems map to 400, a file with nothing to plot maps to
// 422. Any other error is returned unchanged.
func FromParseError(err error) error {
	var (
		dup   *plotfile.DuplicateLabelError
		cols  *plotfile.InconsistentColumnCountError
		num   *plotfile.MalformedNumberError
		empty *plotfile.EmptyTableError
	)
	switch {
	case errors.As(err, &dup), errors.As(err, &cols), errors.As(err, &num):
		return NewUserVisibleError(http.StatusBadRequest, err.Error())
	case errors.As(err, &empty):
		return NewUserVisibleError(http.StatusUnprocessableEntity, err.Error())
	}
	return err
}
