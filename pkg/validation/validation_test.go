package validation

import (
	"errors"
	"testing"
)

type request struct {
	UserID string   `validate:"required,user_id"`
	K      int      `validate:"min=0,max=50"`
	Alpha  *float64 `validate:"omitempty,gte=0,lte=1"`
}

func f(v float64) *float64 { return &v }

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     request
		wantErr bool
	}{
		{"ok", request{UserID: "65f1c0ffee", K: 8, Alpha: f(0.75)}, false},
		{"alpha zero allowed", request{UserID: "u1", Alpha: f(0)}, false},
		{"missing user", request{K: 8}, true},
		{"user with space", request{UserID: "a b"}, true},
		{"k too large", request{UserID: "u1", K: 51}, true},
		{"alpha out of range", request{UserID: "u1", Alpha: f(1.5)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var verr *Error
				if !errors.As(err, &verr) || len(verr.Fields) == 0 {
					t.Errorf("expected *Error with fields, got %T", err)
				}
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	if err := ValidateVar("user-1", "required,user_id"); err != nil {
		t.Errorf("valid id rejected: %v", err)
	}
	if err := ValidateVar("", "required,user_id"); err == nil {
		t.Error("empty id accepted")
	}
}
