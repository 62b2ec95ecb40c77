package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// record_id: an Airtable record id such as recAbCdEf01234567.
	_ = v.RegisterValidation("record_id", func(fl validator.FieldLevel) bool {
		return IsValidRecordID(fl.Field().String())
	})
	return v
}

func Validate(data interface{}) error {
	return validate.Struct(data)
}

var recordIDPattern = regexp.MustCompile(`^rec[A-Za-z0-9]{14}$`)

// IsValidRecordID reports whether id has the shape of an Airtable record id.
func IsValidRecordID(id string) bool {
	return recordIDPattern.MatchString(id)
}
