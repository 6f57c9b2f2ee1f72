// Package inputval validates decoded request input using struct tags.
//
// Fields declare their rules with `validate:"..."` and a human label with
// `label:"..."`. Messages use the label; FieldError.Field carries the JSON
// name so API clients can attach the message to the right input.
package inputval

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"github.com/dalemusser/admithub/internal/domain/models"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

// custom validation tags
const (
	boardTag           = "board"
	streamTag          = "stream"
	institutionTypeTag = "institution_type"
	objectIDTag        = "objectid"
	notBlankTag        = "notblank"
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation(boardTag, func(fl validator.FieldLevel) bool {
		return curriculum.IsBoard(fl.Field().String())
	})
	_ = validate.RegisterValidation(streamTag, func(fl validator.FieldLevel) bool {
		return curriculum.IsStream(fl.Field().String())
	})
	_ = validate.RegisterValidation(institutionTypeTag, func(fl validator.FieldLevel) bool {
		return models.IsInstitutionType(fl.Field().String())
	})
	_ = validate.RegisterValidation(objectIDTag, func(fl validator.FieldLevel) bool {
		return IsValidObjectID(fl.Field().String())
	})
	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"-"`
	Message string `json:"message"`
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first message, or "".
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Validate checks v (a struct or pointer to struct) against its tags.
func Validate(v any) Result {
	err := validate.Struct(v)
	if err == nil {
		return Result{}
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []FieldError{{Message: err.Error()}}}
	}

	labels := labelsOf(v)
	out := Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		name := fe.StructField()
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		label := labels[name]
		if label == "" {
			label = fe.Field()
		}
		out.Errors = append(out.Errors, FieldError{
			Field:   fieldPath(fe),
			Tag:     fe.Tag(),
			Message: message(fe, label),
		})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace, so
// "curriculumInput.streamsOffered[0]" becomes "streamsOffered[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func labelsOf(v any) map[string]string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	labels := map[string]string{}
	if t == nil || t.Kind() != reflect.Struct {
		return labels
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if l := f.Tag.Get("label"); l != "" {
			labels[f.Name] = l
		}
	}
	return labels
}

func message(fe validator.FieldError, label string) string {
	kind := fe.Kind()
	switch fe.Tag() {
	case "required", notBlankTag:
		return fmt.Sprintf("%s is required.", label)
	case "max":
		switch {
		case kind == reflect.Slice || kind == reflect.Map:
			return fmt.Sprintf("%s must have at most %s items.", label, fe.Param())
		case isNumber(kind):
			return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		switch {
		case kind == reflect.Slice || kind == reflect.Map:
			return fmt.Sprintf("%s must have at least %s items.", label, fe.Param())
		case isNumber(kind):
			return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email":
		return "A valid email address is required."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case boardTag:
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(curriculum.Boards, ", "))
	case streamTag:
		return fmt.Sprintf("%s must be one of: %s.", label, joinStreams())
	case institutionTypeTag:
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(models.InstitutionTypes, ", "))
	case objectIDTag:
		return fmt.Sprintf("%s is not a valid ID.", label)
	}
	return fe.Translate(translator)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func joinStreams() string {
	names := make([]string, len(curriculum.Streams))
	for i, s := range curriculum.Streams {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// IsValidObjectID reports whether s (trimmed) is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}
