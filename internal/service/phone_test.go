package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"89991234567", "+79991234567"},
		{"79991234567", "+79991234567"},
		{"+7 (999) 123-45-67", "+79991234567"},
		{"8 (999) 123 45 67", "+79991234567"},
		{"380501234567", "+380501234567"},
		{"+44 20 7946 0958", "+442079460958"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizePhone(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizePhone(got), "normalization must be idempotent")
		})
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "russian with 8", in: "89991234567", want: "+79991234567"},
		{name: "international", in: "+380501234567", want: "+380501234567"},
		{name: "too short", in: "+1234567", wantErr: ErrPhoneLength},
		{name: "too long", in: "+1234567890123456", wantErr: ErrPhoneFormat},
		{name: "leading zero", in: "+0123456789", wantErr: ErrPhoneFormat},
		{name: "letters only", in: "abc", wantErr: ErrPhoneFormat},
		{name: "all ones", in: "+1111111111", wantErr: ErrPhoneSpam},
		{name: "repeated digit", in: "+5555555555", wantErr: ErrPhoneSpam},
		{name: "repeated digit longer", in: "+777777777777", wantErr: ErrPhoneSpam},
		{name: "sequence", in: "+1234567890", wantErr: ErrPhoneSpam},
		{name: "nine repeats is fine", in: "+5555555554", want: "+5555555554"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePhoneNumber(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
