package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
)

const orderColumns = `id, customer_name, product_name, production_quantity, unit_weight_mg,
	batch_total_weight_mg, completion_date, process_issues, quality_notes, capsule_color,
	capsule_size, capsule_type, created_by, customer_service, actual_production_quantity,
	material_yield_quantity, created_at, updated_at`

// GetOrder loads the full aggregate: the order row, its ingredients and its
// work-logs ordered by work date ascending.
func (s *Storage) GetOrder(ctx context.Context, id string) (*storage.ProductionOrder, error) {
	const op = "storage.mysql.GetOrder"

	stmt := `SELECT ` + orderColumns + ` FROM production_orders WHERE id = ?`

	order, err := scanOrder(s.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: id=%s: %w", op, id, storage.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order.Ingredients, err = s.orderIngredients(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order.WorkLogs, err = s.orderWorkLogs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}

func (s *Storage) orderIngredients(ctx context.Context, orderID string) ([]storage.Ingredient, error) {
	const op = "storage.mysql.orderIngredients"

	stmt := `SELECT id, order_id, material_name, unit_content_mg, is_customer_provided, is_customer_supplied
	         FROM ingredients WHERE order_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, stmt, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	ingredients := []storage.Ingredient{}
	for rows.Next() {
		var ing storage.Ingredient
		err := rows.Scan(&ing.ID, &ing.OrderID, &ing.MaterialName, &ing.UnitContentMg,
			&ing.IsCustomerProvided, &ing.IsCustomerSupplied)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ingredients = append(ingredients, ing)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ingredients, nil
}

func (s *Storage) orderWorkLogs(ctx context.Context, orderID string) ([]storage.WorkLog, error) {
	const op = "storage.mysql.orderWorkLogs"

	stmt := `SELECT id, order_id, work_date, headcount, start_time, end_time, notes,
	                effective_minutes, calculated_work_units
	         FROM work_logs WHERE order_id = ? ORDER BY work_date ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, stmt, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	logs := []storage.WorkLog{}
	for rows.Next() {
		var wl storage.WorkLog
		var notes sql.NullString
		err := rows.Scan(&wl.ID, &wl.OrderID, &wl.WorkDate, &wl.Headcount, &wl.StartTime,
			&wl.EndTime, &notes, &wl.EffectiveMinutes, &wl.CalculatedWorkUnits)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if notes.Valid {
			wl.Notes = &notes.String
		}
		logs = append(logs, wl)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return logs, nil
}

type OrderFilter struct {
	Search string
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
}

// ListOrders returns one page of order summaries newest first, plus the
// total match count for the pager.
func (s *Storage) ListOrders(ctx context.Context, filter OrderFilter) ([]storage.OrderSummary, int64, error) {
	const op = "storage.mysql.ListOrders"

	where := " WHERE 1=1"
	var args []interface{}

	if filter.Search != "" {
		where += " AND (customer_name LIKE ? OR product_name LIKE ?)"
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}
	if !filter.From.IsZero() {
		where += " AND created_at >= ?"
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		where += " AND created_at < ?"
		args = append(args, filter.To)
	}

	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM production_orders`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	stmt := `SELECT id, customer_name, product_name, production_quantity, unit_weight_mg,
	                batch_total_weight_mg, completion_date, created_at
	         FROM production_orders` + where + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	orders := []storage.OrderSummary{}
	for rows.Next() {
		var o storage.OrderSummary
		var hasCompletion sql.NullTime

		err := rows.Scan(&o.ID, &o.CustomerName, &o.ProductName, &o.ProductionQuantity,
			&o.UnitWeightMg, &o.BatchTotalWeightMg, &hasCompletion, &o.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if hasCompletion.Valid {
			completion := storage.NewDate(hasCompletion.Time.Year(), hasCompletion.Time.Month(), hasCompletion.Time.Day())
			o.CompletionDate = &completion
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return orders, total, nil
}

// WorkUnitTotals sums persisted minutes and units per order for orders
// created in [from, to). Used by the report sheet.
func (s *Storage) WorkUnitTotals(ctx context.Context, from, to time.Time) (map[string]storage.WorkTotal, error) {
	const op = "storage.mysql.WorkUnitTotals"

	stmt := `SELECT w.order_id, COALESCE(SUM(w.effective_minutes), 0), COALESCE(SUM(w.calculated_work_units), 0)
	         FROM work_logs w
	         JOIN production_orders o ON o.id = w.order_id
	         WHERE o.created_at >= ? AND o.created_at < ?
	         GROUP BY w.order_id`

	rows, err := s.db.QueryContext(ctx, stmt, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	totals := make(map[string]storage.WorkTotal)
	for rows.Next() {
		var orderID string
		var t storage.WorkTotal
		if err := rows.Scan(&orderID, &t.EffectiveMinutes, &t.WorkUnits); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		totals[orderID] = t
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return totals, nil
}

type orderRow interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row orderRow) (*storage.ProductionOrder, error) {
	var o storage.ProductionOrder
	var completion sql.NullTime
	var processIssues, qualityNotes, capsuleColor, capsuleSize, capsuleType sql.NullString
	var createdBy, customerService sql.NullString
	var actualQty, yieldQty sql.NullFloat64

	err := row.Scan(&o.ID, &o.CustomerName, &o.ProductName, &o.ProductionQuantity,
		&o.UnitWeightMg, &o.BatchTotalWeightMg, &completion, &processIssues, &qualityNotes,
		&capsuleColor, &capsuleSize, &capsuleType, &createdBy, &customerService,
		&actualQty, &yieldQty, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if completion.Valid {
		d := storage.NewDate(completion.Time.Year(), completion.Time.Month(), completion.Time.Day())
		o.CompletionDate = &d
	}
	o.ProcessIssues = nullStr(processIssues)
	o.QualityNotes = nullStr(qualityNotes)
	o.CapsuleColor = nullStr(capsuleColor)
	o.CapsuleSize = nullStr(capsuleSize)
	o.CapsuleType = nullStr(capsuleType)
	o.CreatedBy = nullStr(createdBy)
	o.CustomerService = nullStr(customerService)
	if actualQty.Valid {
		o.ActualProductionQuantity = &actualQty.Float64
	}
	if yieldQty.Valid {
		o.MaterialYieldQuantity = &yieldQty.Float64
	}

	// Decimal columns may come back padded ("500.00000"); normalize.
	o.UnitWeightMg = trimDec(o.UnitWeightMg)
	o.BatchTotalWeightMg = trimDec(o.BatchTotalWeightMg)

	return &o, nil
}

func nullStr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func trimDec(d decimal.Decimal) decimal.Decimal {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return decimal.RequireFromString(s)
}
