// internal/utils/validator.go
package utils

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// Format rules for the Indian onboarding form.
var (
	mobileRegex      = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodeRegex     = regexp.MustCompile(`^\d{6}$`)
	gstRegex         = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z]\d[Z][A-Z\d]$`)
	aadhaarRegex     = regexp.MustCompile(`^\d{12}$`)
	panRegex         = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscRegex        = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	bankAccountRegex = regexp.MustCompile(`^\d{9,18}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("indian_mobile", fieldValidator(IsValidMobile))
	validate.RegisterValidation("pincode", fieldValidator(IsValidPincode))
	validate.RegisterValidation("gst_number", fieldValidator(IsValidGST))
	validate.RegisterValidation("aadhaar_number", fieldValidator(IsValidAadhaar))
	validate.RegisterValidation("pan_number", fieldValidator(IsValidPAN))
	validate.RegisterValidation("ifsc_code", fieldValidator(IsValidIFSC))
	validate.RegisterValidation("bank_account", fieldValidator(IsValidBankAccount))

	// Error keys follow the wire field names, not Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func fieldValidator(check func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true // presence is checked by the required tag
		}
		return check(value)
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// Format checks backing the registered validators.
func IsValidMobile(s string) bool      { return mobileRegex.MatchString(s) }
func IsValidPincode(s string) bool     { return pincodeRegex.MatchString(s) }
func IsValidGST(s string) bool         { return gstRegex.MatchString(s) }
func IsValidAadhaar(s string) bool     { return aadhaarRegex.MatchString(s) }
func IsValidPAN(s string) bool         { return panRegex.MatchString(s) }
func IsValidIFSC(s string) bool        { return ifscRegex.MatchString(s) }
func IsValidBankAccount(s string) bool { return bankAccountRegex.MatchString(s) }

// FieldErrorMap flattens validator errors into the field-keyed map the intake
// API returns.
func FieldErrorMap(err error) map[string]string {
	fields := make(map[string]string)
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			key := fieldPath(e.Namespace())
			if _, exists := fields[key]; !exists {
				fields[key] = getValidationMessage(e)
			}
		}
	}
	return fields
}

// fieldPath strips the root struct name from a validator namespace, leaving
// the dotted wire path ("businessInfo.contact.phone").
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.Slice {
			return e.Field() + " must have at least " + e.Param() + " entry"
		}
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "indian_mobile":
		return "Mobile number must be 10 digits starting with 6-9"
	case "pincode":
		return "Pincode must be 6 digits"
	case "gst_number":
		return "Invalid GST number format"
	case "aadhaar_number":
		return "Aadhaar number must be 12 digits"
	case "pan_number":
		return "Invalid PAN format"
	case "ifsc_code":
		return "Invalid IFSC code format"
	case "bank_account":
		return "Account number must be 9-18 digits"
	default:
		return e.Field() + " is invalid"
	}
}
