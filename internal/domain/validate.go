package domain

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator checks commands against their bounded-field rules and reports the
// first violation as a *ValidationError.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v, now: now}
}

// Struct runs the validate tags of s.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return Invalid(fieldPath(fe), reason(fe))
	}
	return Invalid("", err.Error())
}

// NewRequest validates a request about to be created.
func (v *Validator) NewRequest(in *NewRequest) error {
	if err := v.Struct(in); err != nil {
		return err
	}
	if !in.Category.Valid() {
		return Invalid("category", "must be one of cleaning, repairs, delivery, tutoring, other")
	}
	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		return Invalid("payment_method", "must be in_app or cash")
	}
	if !in.ScheduledDate.After(v.now()) {
		return Invalid("scheduled_date", "must be in the future")
	}
	return validateBudget(in.Budget)
}

// Request re-validates a request after an update was applied to it.
func (v *Validator) Request(r *ServiceRequest) error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return Invalid("title", "is required")
	case len([]rune(r.Title)) > MaxTitleLen:
		return Invalid("title", "must be at most 100 characters")
	case len([]rune(r.Description)) > MaxDescriptionLen:
		return Invalid("description", "must be at most 2000 characters")
	case strings.TrimSpace(r.Location) == "":
		return Invalid("location", "is required")
	case len([]rune(r.Location)) > MaxLocationLen:
		return Invalid("location", "must be at most 255 characters")
	case !r.ScheduledDate.After(v.now()):
		return Invalid("scheduled_date", "must be in the future")
	}
	return validateBudget(r.Budget)
}

func validateBudget(b Budget) error {
	if b.Min.LessThan(decimal.Zero) {
		return Invalid("budget.min", "must not be negative")
	}
	if b.Max.LessThan(b.Min) {
		return Invalid("budget.max", "must not be below budget.min")
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " items"
		}
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of " + fe.Param()
	case "alphanum":
		return "must contain only letters and digits"
	}
	return "failed " + fe.Tag() + " check"
}
