package dto

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
)

func TestCreateVaultRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateVaultRequest{Name: "Caisse A", MemberIDs: []string{"u1", "u2"}}

	got := req.ToUseCaseInput()
	want := usecase.CreateVaultInput{Name: "Caisse A", MemberIDs: []string{"u1", "u2"}}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestRecordMovementRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name    string
		request *RecordMovementRequest
		want    usecase.RecordMovementInput
		wantErr error
	}{
		{
			name:    "valid entry",
			request: &RecordMovementRequest{Type: "entry", Amount: "250.50", Description: "deposit"},
			want: usecase.RecordMovementInput{
				VaultID:     "v1",
				Type:        domain.MovementTypeEntry,
				Amount:      decimal.RequireFromString("250.50"),
				Description: "deposit",
			},
		},
		{
			name:    "unknown type",
			request: &RecordMovementRequest{Type: "TRANSFER", Amount: "1"},
			wantErr: domain.ErrInvalidMovementType,
		},
		{
			name:    "invalid amount",
			request: &RecordMovementRequest{Type: "EXIT", Amount: "abc"},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "missing amount",
			request: &RecordMovementRequest{Type: "EXIT"},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToUseCaseInput("v1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.VaultID != tt.want.VaultID || got.Type != tt.want.Type ||
				!got.Amount.Equal(tt.want.Amount) || got.Description != tt.want.Description {
				t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRecordInventoryRequest_ToUseCaseInput(t *testing.T) {
	got, err := (&RecordInventoryRequest{TotalAmount: "1000.00", Notes: "monthly"}).ToUseCaseInput("v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.VaultID != "v1" || !got.TotalAmount.Equal(decimal.NewFromInt(1000)) || got.Notes != "monthly" {
		t.Fatalf("unexpected input %+v", got)
	}

	if _, err := (&RecordInventoryRequest{TotalAmount: "1e"}).ToUseCaseInput("v1"); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
