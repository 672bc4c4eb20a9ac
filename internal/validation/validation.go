// Package validation checks board and task forms before they reach the
// store.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BoardForm is the input of the add/edit board operations.
type BoardForm struct {
	Name    string       `json:"name" validate:"required"`
	Columns []ColumnForm `json:"columns" validate:"dive"`
}

// ColumnForm names a column. From optionally points at the existing column
// whose tasks it keeps on edit.
type ColumnForm struct {
	Name string `json:"name" validate:"required"`
	From *int   `json:"from,omitempty" validate:"omitempty,min=0"`
}

// TaskForm is the input of the add/edit task operations. StatusIndex is
// the column the task should end up in.
type TaskForm struct {
	Title       string        `json:"title" validate:"required"`
	Description string        `json:"description"`
	Subtasks    []SubtaskForm `json:"subtasks" validate:"dive"`
	StatusIndex int           `json:"statusIndex" validate:"min=0"`
}

type SubtaskForm struct {
	Title string `json:"title" validate:"required"`
}

// SubtaskTitles returns the titles of the form's subtasks.
func (f TaskForm) SubtaskTitles() []string {
	titles := make([]string, len(f.Subtasks))
	for i, s := range f.Subtasks {
		titles[i] = s.Title
	}
	return titles
}

// FieldError is a user-correctable problem with one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors lists every failing field of a form.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(msgs, "; ")
}

var messages = map[string]string{
	"required:BoardForm.Name":          "Board Name is required",
	"required:BoardForm.Columns.Name":  "Column Name is required",
	"min:BoardForm.Columns.From":       "Column source must not be negative",
	"required:TaskForm.Title":          "Task Name is required",
	"required:TaskForm.Subtasks.Title": "Subtask Name is required",
	"min:TaskForm.StatusIndex":         "Status must not be negative",
}

var indexPattern = regexp.MustCompile(`\[\d+\]`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates a form. It returns nil or an Errors value.
func Struct(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   stripRoot(fe.Namespace()),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	key := fe.Tag() + ":" + indexPattern.ReplaceAllString(fe.StructNamespace(), "")
	if msg, ok := messages[key]; ok {
		return msg
	}
	return fe.Field() + " is invalid"
}

func stripRoot(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
