package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
)

// SaveOrder inserts a new order with its ingredients and work-logs in one
// transaction. The caller has already validated the payload and filled the
// derived weight and work-unit fields.
func (s *Storage) SaveOrder(ctx context.Context, order *storage.ProductionOrder) error {
	const op = "storage.mysql.SaveOrder"

	stmt := `INSERT INTO production_orders (` + orderColumns + `)
	         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC().Truncate(time.Second)
	order.CreatedAt = now
	order.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, stmt,
		order.ID, order.CustomerName, order.ProductName, order.ProductionQuantity,
		order.UnitWeightMg, order.BatchTotalWeightMg, nullDate(order.CompletionDate),
		order.ProcessIssues, order.QualityNotes, order.CapsuleColor, order.CapsuleSize,
		order.CapsuleType, order.CreatedBy, order.CustomerService,
		order.ActualProductionQuantity, order.MaterialYieldQuantity,
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: insert order: %w", op, err)
	}

	if err := insertChildren(ctx, tx, order); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, order *storage.ProductionOrder) error {
	stmtIngredient, err := tx.PrepareContext(ctx, `
		INSERT INTO ingredients (order_id, material_name, unit_content_mg, is_customer_provided, is_customer_supplied)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ingredient insert: %w", err)
	}
	defer stmtIngredient.Close()

	for _, ing := range order.Ingredients {
		_, err := stmtIngredient.ExecContext(ctx, order.ID, ing.MaterialName, ing.UnitContentMg,
			ing.IsCustomerProvided, ing.IsCustomerSupplied)
		if err != nil {
			return fmt.Errorf("insert ingredient %s: %w", ing.MaterialName, err)
		}
	}

	stmtWorkLog, err := tx.PrepareContext(ctx, `
		INSERT INTO work_logs (order_id, work_date, headcount, start_time, end_time, notes, effective_minutes, calculated_work_units)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare work-log insert: %w", err)
	}
	defer stmtWorkLog.Close()

	for _, wl := range order.WorkLogs {
		_, err := stmtWorkLog.ExecContext(ctx, order.ID, wl.WorkDate, wl.Headcount,
			wl.StartTime, wl.EndTime, wl.Notes, wl.EffectiveMinutes, wl.CalculatedWorkUnits)
		if err != nil {
			return fmt.Errorf("insert work-log %s: %w", wl.WorkDate.In(storage.BusinessZone).Format("2006-01-02"), err)
		}
	}

	return nil
}

func nullDate(d *storage.Date) interface{} {
	if d == nil {
		return nil
	}
	return *d
}
