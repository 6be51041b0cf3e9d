package item

import (
	"errors"
	"testing"
)

func TestAddItemParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  AddItemParams
		wantErr bool
	}{
		{
			name:   "valid params",
			params: AddItemParams{Description: "Mug", Cost: "12.50", URL: "https://shop.example.com/mug"},
		},
		{
			name:    "missing description",
			params:  AddItemParams{Cost: "12.50", URL: "https://shop.example.com/mug"},
			wantErr: true,
		},
		{
			name:    "missing cost",
			params:  AddItemParams{Description: "Mug", URL: "https://shop.example.com/mug"},
			wantErr: true,
		},
		{
			name:    "missing url",
			params:  AddItemParams{Description: "Mug", Cost: "12.50"},
			wantErr: true,
		},
		{
			name:    "whitespace only",
			params:  AddItemParams{Description: "  ", Cost: "1", URL: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if vErr.Message != "Description, cost, and URL are required" {
				t.Errorf("Validate() message = %q", vErr.Message)
			}
		})
	}
}
