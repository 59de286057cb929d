package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestIsInstitutionalEmail(t *testing.T) {
	tests := []struct {
		email  string
		domain string
		want   bool
	}{
		{email: "ana.vera@uteq.edu.ec", domain: "@uteq.edu.ec", want: true},
		{email: " Ana.Vera@UTEQ.edu.ec ", domain: "@uteq.edu.ec", want: true},
		{email: "ana.vera@uteq.edu.ec", domain: "UTEQ.edu.ec", want: true},
		{email: "ana.vera@gmail.com", domain: "@uteq.edu.ec"},
		{email: "ana@subuteq.edu.ec", domain: "@uteq.edu.ec"},
		{email: "ana@uteq.edu.ec.evil.com", domain: "@uteq.edu.ec"},
		{email: "@uteq.edu.ec", domain: "@uteq.edu.ec"},
		{email: "Ana <ana@uteq.edu.ec>", domain: "@uteq.edu.ec"},
		{email: "", domain: "@uteq.edu.ec"},
		{email: "ana@uteq.edu.ec", domain: ""},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInstitutionalEmail(tt.email, tt.domain))
		})
	}
}

func TestValidator(t *testing.T) {
	type form struct {
		Cedula string `json:"cedula" validate:"required,cedula"`
		Email  string `json:"correo" validate:"required,institutional_email"`
		Name   string `json:"nombre" validate:"notblank"`
	}
	validate, translator := NewValidator("@uteq.edu.ec")

	tests := []struct {
		name string
		form form
		want map[string]string
	}{
		{
			name: "valid",
			form: form{Cedula: "1204567890", Email: "ana.vera@uteq.edu.ec", Name: "Ana Vera"},
		},
		{
			name: "short cedula",
			form: form{Cedula: "120456789", Email: "ana.vera@uteq.edu.ec", Name: "Ana Vera"},
			want: map[string]string{"cedula": cedulaText},
		},
		{
			name: "letters in cedula",
			form: form{Cedula: "12045678AB", Email: "ana.vera@gmail.com", Name: "  "},
			want: map[string]string{"cedula": cedulaText, "correo": institutionalEmailText, "nombre": notBlankText},
		},
		{
			name: "missing",
			form: form{Name: "Ana"},
			want: map[string]string{"cedula": requiredText, "correo": requiredText},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.form)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			got := make(map[string]string)
			for _, fe := range err.(validator.ValidationErrors) {
				got[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
