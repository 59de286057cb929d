package core

import (
	"net/mail"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "this field cannot be blank"

	cedulaTag   = "cedula"
	cedulaText  = "must be a 10 digit national ID"
	cedulaRegex = regexp.MustCompile(`^\d{10}$`)

	institutionalEmailTag  = "institutional_email"
	institutionalEmailText = "an institutional email is required"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
// domain is the institutional email suffix, e.g. "@uteq.edu.ec".
func InitValidators(validate *validator.Validate, translator ut.Translator, domain string) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(cedulaTag, cedulaValidation)
	RegisterCustomTranslation(validate, translator, cedulaTag, cedulaText)

	_ = validate.RegisterValidation(institutionalEmailTag, func(fl validator.FieldLevel) bool {
		return IsInstitutionalEmail(fl.Field().String(), domain)
	})
	RegisterCustomTranslation(validate, translator, institutionalEmailTag, institutionalEmailText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// NewValidator returns a ready to use validator and its translator.
func NewValidator(domain string) (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator, domain)
	return validate, translator
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// IsInstitutionalEmail reports whether email is a well formed address ending with domain.
func IsInstitutionalEmail(email, domain string) bool {
	email = CleanString(email, true /* lower */)
	if email == "" || domain == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	domain = strings.ToLower(domain)
	if !strings.HasPrefix(domain, "@") {
		domain = "@" + domain
	}
	return strings.HasSuffix(email, domain) && len(email) > len(domain)
}

// Custom Global Validators

// notBlankValidation rejects strings made only of whitespace.
func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// cedulaValidation only allows 10 digit national IDs.
func cedulaValidation(fl validator.FieldLevel) bool {
	return cedulaRegex.MatchString(fl.Field().String())
}
