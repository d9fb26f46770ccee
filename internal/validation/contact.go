package validation

import (
	"errors"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/contact-qr/internal/vcard"
)

// Messages shown for each failed check.
const (
	MsgName      = "Enter at least one of First, Last, or Display name"
	MsgEmail     = "Enter a valid email (e.g., name@example.com)"
	MsgPhone     = "Enter 7–15 digits (you can include +, spaces, -)"
	MsgWebsite   = "Enter a valid URL starting with http:// or https://"
	MsgHostedURL = "Enter a valid https:// URL to a .vcf file"
)

// Phone numbers must carry between MinPhoneDigits and MaxPhoneDigits digits.
const (
	MinPhoneDigits = 7
	MaxPhoneDigits = 15
)

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	nonDigitPattern = regexp.MustCompile(`[^0-9]`)
)

// contactInput is the shape the validator checks, in form order. The custom
// checks accept blank values, so optional fields need no omitempty.
type contactInput struct {
	Name        string `validate:"required" field:"fullName"`
	Email       string `validate:"contactemail" field:"email"`
	PhoneMobile string `validate:"phone" field:"phoneMobile"`
	PhoneWork   string `validate:"phone" field:"phoneWork"`
	Website     string `validate:"weburl" field:"website"`
	HostedURL   string `validate:"required_if=Hosted true,weburl" field:"hostedVcfUrl"`
	Hosted      bool
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func contactValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			return f.Tag.Get("field")
		})
		_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
			return IsEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
			return IsWebURL(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidateContact checks fields the way the contact form does. hostedURL is
// checked only when hosted is true. The returned error is a *ValidationError
// listing every failing field, or nil.
func ValidateContact(fields vcard.ContactFields, hosted bool, hostedURL string) error {
	in := contactInput{
		Name:        firstNonBlank(fields.FirstName, fields.LastName, fields.DisplayName),
		Email:       strings.TrimSpace(fields.Email),
		PhoneMobile: strings.TrimSpace(fields.PhoneMobile),
		PhoneWork:   strings.TrimSpace(fields.PhoneWork),
		Website:     strings.TrimSpace(fields.Website),
		Hosted:      hosted,
	}
	if hosted {
		in.HostedURL = strings.TrimSpace(hostedURL)
	}

	err := contactValidator().Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Message: "failed to run contact validation", Cause: err}
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{Field: fe.Field(), Message: message(fe.Field())})
	}
	return out
}

func message(field string) string {
	switch field {
	case "fullName":
		return MsgName
	case "email":
		return MsgEmail
	case "phoneMobile", "phoneWork":
		return MsgPhone
	case "website":
		return MsgWebsite
	case "hostedVcfUrl":
		return MsgHostedURL
	default:
		return "Invalid value"
	}
}

// IsEmail reports whether value looks like an email address. Blank passes.
func IsEmail(value string) bool {
	return value == "" || emailPattern.MatchString(value)
}

// IsPhone reports whether value carries 7 to 15 digits; separators are
// ignored. Blank passes.
func IsPhone(value string) bool {
	if value == "" {
		return true
	}
	n := len(nonDigitPattern.ReplaceAllString(value, ""))
	return n >= MinPhoneDigits && n <= MaxPhoneDigits
}

// IsWebURL reports whether value is an absolute http or https URL. Blank passes.
func IsWebURL(value string) bool {
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
