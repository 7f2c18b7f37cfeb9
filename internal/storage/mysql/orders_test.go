package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
)

type TestOrderFixture struct {
	Customer    string
	Product     string
	Quantity    int64
	Ingredients []TestIngredient
	WorkLogs    []TestWorkLog
}

type TestIngredient struct {
	Name    string
	Content string
}

type TestWorkLog struct {
	Year      int
	Month     time.Month
	Day       int
	Start     string
	End       string
	Headcount int
	Minutes   int64
	Units     string
}

func buildTestOrder(fixture TestOrderFixture) *storage.ProductionOrder {
	order := &storage.ProductionOrder{
		ID:                 uuid.NewString(),
		CustomerName:       fixture.Customer,
		ProductName:        fixture.Product,
		ProductionQuantity: fixture.Quantity,
	}

	unitWeight := decimal.Zero
	for _, ing := range fixture.Ingredients {
		content := decimal.RequireFromString(ing.Content)
		unitWeight = unitWeight.Add(content)
		order.Ingredients = append(order.Ingredients, storage.Ingredient{
			MaterialName:       ing.Name,
			UnitContentMg:      content,
			IsCustomerProvided: true,
			IsCustomerSupplied: true,
		})
	}
	order.UnitWeightMg = unitWeight
	order.BatchTotalWeightMg = unitWeight.Mul(decimal.NewFromInt(fixture.Quantity))

	for _, wl := range fixture.WorkLogs {
		order.WorkLogs = append(order.WorkLogs, storage.WorkLog{
			WorkDate:            storage.NewDate(wl.Year, wl.Month, wl.Day),
			Headcount:           wl.Headcount,
			StartTime:           wl.Start,
			EndTime:             wl.End,
			EffectiveMinutes:    wl.Minutes,
			CalculatedWorkUnits: decimal.RequireFromString(wl.Units),
		})
	}

	return order
}

func createTestOrder(t *testing.T, fixture TestOrderFixture) string {
	t.Helper()

	s := &Storage{db: testDB}
	order := buildTestOrder(fixture)
	require.NoError(t, s.SaveOrder(context.Background(), order))

	return order.ID
}

func cleanupTestDB(t *testing.T) {
	tables := []string{"work_logs", "ingredients", "production_orders"}
	for _, table := range tables {
		_, err := testDB.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}
}

func ingredientNames(ingredients []storage.Ingredient) []string {
	names := make([]string, len(ingredients))
	for i, ing := range ingredients {
		names[i] = ing.MaterialName
	}
	return names
}

func TestStorage_GetOrder_LoadsAggregate(t *testing.T) {
	cleanupTestDB(t)

	id := createTestOrder(t, TestOrderFixture{
		Customer: "ACME",
		Product:  "Multivit",
		Quantity: 1000,
		Ingredients: []TestIngredient{
			{Name: "Vitamin C", Content: "500"},
			{Name: "Zinc", Content: "25.5"},
		},
		WorkLogs: []TestWorkLog{
			{Year: 2024, Month: time.January, Day: 16, Start: "08:30", End: "17:30", Headcount: 3, Minutes: 540, Units: "3.375"},
			{Year: 2024, Month: time.January, Day: 15, Start: "09:00", End: "12:00", Headcount: 2, Minutes: 180, Units: "0.75"},
		},
	})

	s := &Storage{db: testDB}
	order, err := s.GetOrder(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "ACME", order.CustomerName)
	assert.True(t, order.UnitWeightMg.Equal(decimal.RequireFromString("525.5")), "got %s", order.UnitWeightMg)
	assert.True(t, order.BatchTotalWeightMg.Equal(decimal.RequireFromString("525500")), "got %s", order.BatchTotalWeightMg)
	assert.ElementsMatch(t, []string{"Vitamin C", "Zinc"}, ingredientNames(order.Ingredients))

	// Work-logs come back ascending by date regardless of insert order.
	require.Len(t, order.WorkLogs, 2)
	assert.Equal(t, 15, order.WorkLogs[0].WorkDate.In(storage.BusinessZone).Day())
	assert.Equal(t, 16, order.WorkLogs[1].WorkDate.In(storage.BusinessZone).Day())
}

func TestStorage_GetOrder_NotFound(t *testing.T) {
	cleanupTestDB(t)

	s := &Storage{db: testDB}
	_, err := s.GetOrder(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
}

// A resubmitted child collection fully replaces the stored one: an
// ingredient left out of the update is gone afterwards, not merged back.
func TestStorage_UpdateOrder_ReplacesChildren(t *testing.T) {
	cleanupTestDB(t)

	id := createTestOrder(t, TestOrderFixture{
		Customer: "ACME",
		Product:  "Multivit",
		Quantity: 1000,
		Ingredients: []TestIngredient{
			{Name: "Vitamin A", Content: "100"},
			{Name: "Vitamin B", Content: "200"},
			{Name: "Vitamin C", Content: "300"},
		},
		WorkLogs: []TestWorkLog{
			{Year: 2024, Month: time.January, Day: 10, Start: "08:00", End: "12:00", Headcount: 1, Minutes: 240, Units: "0.5"},
		},
	})

	update := buildTestOrder(TestOrderFixture{
		Customer: "ACME",
		Product:  "Multivit",
		Quantity: 2000,
		Ingredients: []TestIngredient{
			{Name: "Vitamin A", Content: "100"},
			{Name: "Vitamin B", Content: "200"},
		},
		WorkLogs: []TestWorkLog{
			{Year: 2024, Month: time.February, Day: 1, Start: "13:00", End: "17:00", Headcount: 2, Minutes: 240, Units: "1"},
		},
	})

	s := &Storage{db: testDB}
	require.NoError(t, s.UpdateOrder(context.Background(), id, update))

	order, err := s.GetOrder(context.Background(), id)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Vitamin A", "Vitamin B"}, ingredientNames(order.Ingredients))
	assert.NotContains(t, ingredientNames(order.Ingredients), "Vitamin C")

	require.Len(t, order.WorkLogs, 1)
	assert.Equal(t, "13:00", order.WorkLogs[0].StartTime)
	assert.Equal(t, time.February, order.WorkLogs[0].WorkDate.In(storage.BusinessZone).Month())

	assert.Equal(t, int64(2000), order.ProductionQuantity)
	assert.True(t, order.UnitWeightMg.Equal(decimal.NewFromInt(300)), "got %s", order.UnitWeightMg)
}

func TestStorage_UpdateOrder_NotFound(t *testing.T) {
	cleanupTestDB(t)

	update := buildTestOrder(TestOrderFixture{
		Customer: "ACME",
		Product:  "Multivit",
		Quantity: 100,
		Ingredients: []TestIngredient{
			{Name: "Vitamin C", Content: "500"},
		},
	})

	s := &Storage{db: testDB}
	err := s.UpdateOrder(context.Background(), uuid.NewString(), update)

	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
}

func TestStorage_DeleteOrder_SecondDeleteNotFound(t *testing.T) {
	cleanupTestDB(t)

	id := createTestOrder(t, TestOrderFixture{
		Customer: "ACME",
		Product:  "Multivit",
		Quantity: 100,
		Ingredients: []TestIngredient{
			{Name: "Vitamin C", Content: "500"},
		},
		WorkLogs: []TestWorkLog{
			{Year: 2024, Month: time.January, Day: 10, Start: "08:00", End: "12:00", Headcount: 1, Minutes: 240, Units: "0.5"},
		},
	})

	s := &Storage{db: testDB}
	require.NoError(t, s.DeleteOrder(context.Background(), id))

	// Children are gone with the order via the cascade.
	var count int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM ingredients WHERE order_id = ?", id).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM work_logs WHERE order_id = ?", id).Scan(&count))
	assert.Zero(t, count)

	// Deleting the same id again hits a gone row.
	err := s.DeleteOrder(context.Background(), id)
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
}

func TestStorage_DeleteOrder_AbsentID(t *testing.T) {
	cleanupTestDB(t)

	s := &Storage{db: testDB}
	err := s.DeleteOrder(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
}

// A work-log stored at business-zone midnight must read back as the same
// calendar day whatever zone the server or the database session runs in.
func TestStorage_WorkLogDate_RoundTrip(t *testing.T) {
	cleanupTestDB(t)

	id := createTestOrder(t, TestOrderFixture{
		Customer: "ACME",
		Product:  "Multivit",
		Quantity: 100,
		Ingredients: []TestIngredient{
			{Name: "Vitamin C", Content: "500"},
		},
		WorkLogs: []TestWorkLog{
			{Year: 2024, Month: time.January, Day: 15, Start: "08:30", End: "17:30", Headcount: 3, Minutes: 540, Units: "3.375"},
		},
	})

	s := &Storage{db: testDB}
	order, err := s.GetOrder(context.Background(), id)
	require.NoError(t, err)

	require.Len(t, order.WorkLogs, 1)
	day := order.WorkLogs[0].WorkDate.In(storage.BusinessZone).Format("2006-01-02")
	assert.Equal(t, "2024-01-15", day)
}

func TestStorage_ListOrders_Search(t *testing.T) {
	cleanupTestDB(t)

	for _, customer := range []string{"ACME", "ACME", "Globex"} {
		createTestOrder(t, TestOrderFixture{
			Customer: customer,
			Product:  "Multivit",
			Quantity: 100,
			Ingredients: []TestIngredient{
				{Name: "Vitamin C", Content: "500"},
			},
		})
	}

	s := &Storage{db: testDB}

	orders, total, err := s.ListOrders(context.Background(), OrderFilter{Search: "ACME"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	orders, total, err = s.ListOrders(context.Background(), OrderFilter{Search: "NONEXISTENT"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}
