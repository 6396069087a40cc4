package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	errors "github.com/frahmantamala/shifts-logger/internal"
)

const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

// Field registers a field. Finish its chain before calling Field again.
func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.AppError {
	return errors.NewValidationFieldError(fv.FieldName, message, code)
}

func (fv *FieldValidator) Required() *FieldValidator {
	return fv.RequiredMsg(fmt.Sprintf("%s is required", fv.FieldName))
}

// RequiredMsg is Required with a caller-supplied message.
func (fv *FieldValidator) RequiredMsg(message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		missing := false
		switch v := value.(type) {
		case string:
			missing = strings.TrimSpace(v) == ""
		case *string:
			missing = v == nil || strings.TrimSpace(*v) == ""
		case time.Time:
			missing = v.IsZero()
		case *time.Time:
			missing = v == nil || v.IsZero()
		case int64:
			missing = v == 0
		}
		if missing {
			return fv.fail(message, errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len(v) < min {
			return fv.fail(fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len(v) > max {
			return fv.fail(fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// Email checks the address shape; empty values are left to Required.
func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" && !emailPattern.MatchString(v) {
			return fv.fail("Provided email address is invalid.", errors.ErrCodeInvalidEmail)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(allowed ...string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fv.fail(fmt.Sprintf("%s must be one of: %s", fv.FieldName, strings.Join(allowed, ", ")), errors.ErrCodeValidationFailed)
	})
	return fv
}

// Password applies the account password policy, one error per failed rule.
func (fv *FieldValidator) Password() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok {
			return nil
		}
		problems := PasswordProblems(v)
		if len(problems) == 0 {
			return nil
		}
		details := make([]errors.ValidationError, len(problems))
		for i, p := range problems {
			details[i] = errors.ValidationError{Field: fv.FieldName, Message: p, Code: string(errors.ErrCodePasswordPolicy)}
		}
		return errors.NewValidationError("Validation failed", errors.ErrCodePasswordPolicy).
			WithDetails(errors.ValidationErrors{Errors: details})
	})
	return fv
}

// NotBefore rejects a time earlier than start; nil end times pass.
func (fv *FieldValidator) NotBefore(start time.Time, startField string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var end *time.Time
		switch v := value.(type) {
		case time.Time:
			end = &v
		case *time.Time:
			end = v
		}
		if end != nil && end.Before(start) {
			return fv.fail(fmt.Sprintf("%s must not be before %s", fv.FieldName, startField), errors.ErrCodeInvalidDate)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// PasswordProblems lists every policy rule password breaks.
func PasswordProblems(password string) []string {
	var problems []string
	if len(password) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf("Passwords must be at least %d characters.", MinPasswordLength))
	}

	var digit, upper, lower, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			symbol = true
		}
	}
	if !symbol {
		problems = append(problems, "Passwords must have at least one non alphanumeric character.")
	}
	if !digit {
		problems = append(problems, "Passwords must have at least one digit ('0'-'9').")
	}
	if !upper {
		problems = append(problems, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	if !lower {
		problems = append(problems, "Passwords must have at least one lowercase ('a'-'z').")
	}
	return problems
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidatePassword(password string) *errors.AppError {
	validator := NewValidator()
	validator.Field("password", password).
		Required().
		Password()
	return validator.Validate()
}

func ValidateShiftWindow(start time.Time, end *time.Time) *errors.AppError {
	validator := NewValidator()
	validator.Field("shiftStart", start).Required()
	validator.Field("shiftEnd", end).NotBefore(start, "shiftStart")
	return validator.Validate()
}
