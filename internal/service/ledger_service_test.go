package service

import (
	"context"
	"testing"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/apierror"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLedgerSvc() (LedgerService, *stubProductRepo, *stubStockRepo, *stubMovementRepo) {
	products := newStubProductRepo()
	stocks := newStubStockRepo(products)
	movements := &stubMovementRepo{}
	svc := NewLedgerService(stocks, movements, products, nil)
	return svc, products, stocks, movements
}

func TestAdjust_AddCreatesMovement(t *testing.T) {
	svc, products, stocks, movements := buildLedgerSvc()
	p := seedProduct(products, stocks, "Brake Pad Set", "BRK-001", 0, 5)
	operator := uuid.New()

	resp, err := svc.Adjust(context.Background(), operator, dto.AdjustStockRequest{
		ProductID: p.ID.String(),
		Type:      "add",
		Quantity:  10,
		Reason:    "initial",
		Notes:     "opening count",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.NewBalance)
	assert.Equal(t, 10, stocks.stocks[p.ID].Quantity)

	require.Equal(t, 1, movements.countFor(p.ID))
	m := movements.movements[0]
	assert.Equal(t, model.MovementInitial, m.Type)
	assert.Equal(t, 10, m.Delta)
	assert.Equal(t, 10, m.BalanceAfter)
	assert.Equal(t, operator, m.PerformedBy)
	assert.Nil(t, m.ReferenceID)
}

func TestAdjust_RemoveBelowZeroWritesNothing(t *testing.T) {
	svc, products, stocks, movements := buildLedgerSvc()
	p := seedProduct(products, stocks, "Oil Filter", "OIL-010", 5, 3)

	_, err := svc.Adjust(context.Background(), uuid.New(), dto.AdjustStockRequest{
		ProductID: p.ID.String(),
		Type:      "remove",
		Quantity:  8,
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInsufficientStock, apierror.From(err).Kind)
	assert.ErrorContains(t, err, "Oil Filter")
	assert.ErrorContains(t, err, "3 unit(s)")

	// Failed adjustment leaves no trace
	assert.Equal(t, 5, stocks.stocks[p.ID].Quantity)
	assert.Equal(t, 0, movements.countFor(p.ID))
}

func TestAdjust_SetComputesDelta(t *testing.T) {
	svc, products, stocks, movements := buildLedgerSvc()
	p := seedProduct(products, stocks, "Spark Plug", "SPK-004", 5, 2)

	resp, err := svc.Adjust(context.Background(), uuid.New(), dto.AdjustStockRequest{
		ProductID: p.ID.String(),
		Type:      "set",
		Quantity:  12,
		Reason:    "correction",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, resp.NewBalance)

	require.Equal(t, 1, movements.countFor(p.ID))
	assert.Equal(t, 7, movements.movements[0].Delta)
	assert.Equal(t, model.MovementCorrection, movements.movements[0].Type)
}

func TestAdjust_SetToCurrentRecordsNothing(t *testing.T) {
	svc, products, stocks, movements := buildLedgerSvc()
	p := seedProduct(products, stocks, "Air Filter", "AIR-002", 7, 2)

	resp, err := svc.Adjust(context.Background(), uuid.New(), dto.AdjustStockRequest{
		ProductID: p.ID.String(),
		Type:      "set",
		Quantity:  7,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.NewBalance)
	assert.Equal(t, 0, movements.countFor(p.ID))
}

func TestAdjust_SetToZeroAllowed(t *testing.T) {
	svc, products, stocks, movements := buildLedgerSvc()
	p := seedProduct(products, stocks, "Wiper Blade", "WIP-003", 4, 2)

	resp, err := svc.Adjust(context.Background(), uuid.New(), dto.AdjustStockRequest{
		ProductID: p.ID.String(),
		Type:      "set",
		Quantity:  0,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.NewBalance)
	require.Equal(t, 1, movements.countFor(p.ID))
	assert.Equal(t, -4, movements.movements[0].Delta)
}

func TestAdjust_UnknownProduct(t *testing.T) {
	svc, _, _, _ := buildLedgerSvc()

	_, err := svc.Adjust(context.Background(), uuid.New(), dto.AdjustStockRequest{
		ProductID: uuid.New().String(),
		Type:      "add",
		Quantity:  1,
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.From(err).Kind)
}

// The ledger invariant: after any sequence of adjustments the balance equals
// the sum of all movement deltas, and the last movement's BalanceAfter equals
// the balance.
func TestLedger_BalanceEqualsDeltaSum(t *testing.T) {
	svc, products, stocks, movements := buildLedgerSvc()
	p := seedProduct(products, stocks, "Timing Belt", "TIM-008", 0, 5)
	operator := uuid.New()

	steps := []dto.AdjustStockRequest{
		{ProductID: p.ID.String(), Type: "add", Quantity: 20, Reason: "initial"},
		{ProductID: p.ID.String(), Type: "remove", Quantity: 6},
		{ProductID: p.ID.String(), Type: "set", Quantity: 9, Reason: "correction"},
		{ProductID: p.ID.String(), Type: "add", Quantity: 3},
	}
	for _, step := range steps {
		_, err := svc.Adjust(context.Background(), operator, step)
		require.NoError(t, err)
	}

	balance := stocks.stocks[p.ID].Quantity
	assert.Equal(t, 12, balance)
	assert.Equal(t, balance, movements.deltaSum(p.ID))
	last := movements.movements[len(movements.movements)-1]
	assert.Equal(t, balance, last.BalanceAfter)
}

func TestLowStock_OrderedMostDepletedFirst(t *testing.T) {
	svc, products, stocks, _ := buildLedgerSvc()
	seedProduct(products, stocks, "Coolant 1L", "COO-020", 3, 5)
	seedProduct(products, stocks, "Brake Fluid", "BRF-021", 0, 5)
	seedProduct(products, stocks, "Gear Oil", "GEA-022", 9, 5) // healthy
	inactive := seedProduct(products, stocks, "Old Gasket", "GSK-023", 1, 5)
	inactive.Active = false

	items, err := svc.LowStock(context.Background())
	require.NoError(t, err)

	// Inactive and healthy products excluded; most depleted first
	require.Len(t, items, 2)
	assert.Equal(t, "Brake Fluid", items[0].Name)
	assert.Equal(t, 0, items[0].Quantity)
	assert.Equal(t, "Coolant 1L", items[1].Name)
	assert.Equal(t, 3, items[1].Quantity)
}

func TestLowStock_AtExactlyMinLevelIncluded(t *testing.T) {
	svc, products, stocks, _ := buildLedgerSvc()
	seedProduct(products, stocks, "Fan Belt", "FAN-030", 5, 5)

	items, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fan Belt", items[0].Name)
	assert.Equal(t, 5, items[0].MinStockLevel)
}

func TestListMovements_FilterByProduct(t *testing.T) {
	svc, products, stocks, _ := buildLedgerSvc()
	a := seedProduct(products, stocks, "Clutch Kit", "CLU-040", 0, 2)
	b := seedProduct(products, stocks, "Radiator", "RAD-041", 0, 2)
	operator := uuid.New()

	for _, pid := range []string{a.ID.String(), a.ID.String(), b.ID.String()} {
		_, err := svc.Adjust(context.Background(), operator, dto.AdjustStockRequest{
			ProductID: pid, Type: "add", Quantity: 2,
		})
		require.NoError(t, err)
	}

	resp, err := svc.ListMovements(context.Background(), dto.MovementFilter{ProductID: a.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	for _, m := range resp.Movements {
		assert.Equal(t, a.ID.String(), m.ProductID)
	}
}
