package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type poolOptions struct {
	Driver  string `validate:"oneof=mysql sqlite3"`
	MinSize int    `validate:"gte=0"`
	MaxSize int    `validate:"gtefield=MinSize"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		object  any
		wantErr bool
	}{
		{name: "valid", object: &poolOptions{Driver: "mysql", MinSize: 1, MaxSize: 10}},
		{name: "value struct", object: poolOptions{Driver: "sqlite3", MinSize: 1, MaxSize: 1}},
		{name: "bad driver", object: &poolOptions{Driver: "oracle", MaxSize: 1}, wantErr: true},
		{name: "max below min", object: &poolOptions{Driver: "mysql", MinSize: 5, MaxSize: 2}, wantErr: true},
		{name: "nil pointer", object: (*poolOptions)(nil)},
		{name: "nil", object: nil},
		{name: "not a struct", object: map[string]any{"a": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.object)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
