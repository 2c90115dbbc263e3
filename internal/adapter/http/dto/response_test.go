package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coffre/internal/domain"
)

func TestBalanceFromDomain(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		balance   *domain.BalanceInfo
		wantMoney string
		wantInv   string
		wantDate  bool
	}{
		{
			name:      "with inventory",
			balance:   domain.NewBalanceInfo(117025, &domain.InventorySnapshot{TotalAmount: decimal.RequireFromString("1000"), CreatedAt: at}),
			wantMoney: "1170.25",
			wantInv:   "1000.00",
			wantDate:  true,
		},
		{
			name:      "without inventory",
			balance:   domain.NewBalanceInfo(12000, nil),
			wantMoney: "120.00",
			wantInv:   "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := BalanceFromDomain("v1", tt.balance)

			if resp.Balance != tt.wantMoney || resp.BalanceCents != tt.balance.BalanceCents {
				t.Fatalf("unexpected balance %+v", resp)
			}
			if resp.LastInventoryAmount != tt.wantInv {
				t.Fatalf("unexpected inventory amount %q", resp.LastInventoryAmount)
			}
			if (resp.LastInventoryDate != nil) != tt.wantDate {
				t.Fatalf("unexpected inventory date %v", resp.LastInventoryDate)
			}

			raw, err := json.Marshal(resp)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !tt.wantDate && !strings.Contains(string(raw), `"last_inventory_date":null`) {
				t.Fatalf("expected null inventory date in %s", raw)
			}
		})
	}
}

func TestMovementFromDomain(t *testing.T) {
	deletedAt := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	m := &domain.Movement{
		ID:        "m1",
		VaultID:   "v1",
		Type:      domain.MovementTypeExit,
		Amount:    decimal.RequireFromString("80.25"),
		CreatedBy: "u1",
		DeletedAt: &deletedAt,
	}

	resp := MovementFromDomain(m)
	if resp.Type != "EXIT" || resp.Amount != "80.25" || !resp.Deleted || resp.DeletedAt == nil {
		t.Fatalf("unexpected response %+v", resp)
	}

	list := MovementsFromDomain([]*domain.Movement{m})
	if len(list) != 1 || list[0].ID != "m1" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestInventoryFromDomain(t *testing.T) {
	inv := &domain.Inventory{ID: "i1", VaultID: "v1", Seq: 7, TotalAmount: decimal.NewFromInt(5)}

	resp := InventoryFromDomain(inv)
	if resp.Seq != 7 || resp.TotalAmount != "5.00" {
		t.Fatalf("unexpected response %+v", resp)
	}
}
