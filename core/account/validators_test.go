package account

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ayudantias/core"
)

func TestValidatePassword(t *testing.T) {
	saved := commonPasswords
	commonPasswords = []string{"p@ssw0rd!a"}
	defer func() { commonPasswords = saved }()

	tests := []struct {
		name    string
		pwd     string
		attrs   []string
		wantMsg string
	}{
		{name: "too short", pwd: "Ab1!", wantMsg: pwdMinLenText},
		{name: "whitespace", pwd: "Abc 12!xyz", wantMsg: pwdNoSpaceText},
		{name: "all numeric", pwd: "1234567890", wantMsg: pwdNotAllNumText},
		{name: "no special", pwd: "Abcdefgh1", wantMsg: pwdComplexityText},
		{name: "no upper", pwd: "abcdefg1!", wantMsg: pwdComplexityText},
		{name: "similar to attrs", pwd: "Carla.Ruiz1", attrs: []string{"", "carla.ruiz"}, wantMsg: pwdAttrSimText},
		{name: "common", pwd: "P@ssw0rd!A", wantMsg: pwdNoCommonText},
		{name: "valid", pwd: "Ay!d4nte-2024", attrs: []string{"Ana Vera", "ana.vera@uteq.edu.ec"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.pwd, tt.attrs...)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var verr *core.ValidationError
			if assert.True(t, errors.As(err, &verr)) {
				assert.Equal(t, []core.FieldError{{Field: "password", Error: tt.wantMsg}}, verr.Fields)
			}
		})
	}
}
