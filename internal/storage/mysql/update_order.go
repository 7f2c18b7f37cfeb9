package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
)

// UpdateOrder rewrites the aggregate in one transaction: scalar fields are
// updated, then all existing ingredients and work-logs are deleted and
// recreated from the submitted collections. Replace, not merge: a child
// row the caller did not resubmit is gone after commit.
func (s *Storage) UpdateOrder(ctx context.Context, id string, order *storage.ProductionOrder) error {
	const op = "storage.mysql.UpdateOrder"

	stmtUpdate := `UPDATE production_orders SET customer_name = ?, product_name = ?, production_quantity = ?,
		unit_weight_mg = ?, batch_total_weight_mg = ?, completion_date = ?, process_issues = ?,
		quality_notes = ?, capsule_color = ?, capsule_size = ?, capsule_type = ?, created_by = ?,
		customer_service = ?, actual_production_quantity = ?, material_yield_quantity = ?, updated_at = ?
		WHERE id = ?`
	stmtDeleteIngredients := `DELETE FROM ingredients WHERE order_id = ?`
	stmtDeleteWorkLogs := `DELETE FROM work_logs WHERE order_id = ?`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	// MySQL reports zero affected rows for a no-op update, so existence is
	// checked explicitly instead of via RowsAffected.
	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM production_orders WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: id=%s: %w", op, id, storage.ErrOrderNotFound)
		}
		return fmt.Errorf("%s: check order: %w", op, err)
	}

	order.ID = id
	order.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	_, err = tx.ExecContext(ctx, stmtUpdate,
		order.CustomerName, order.ProductName, order.ProductionQuantity,
		order.UnitWeightMg, order.BatchTotalWeightMg, nullDate(order.CompletionDate),
		order.ProcessIssues, order.QualityNotes, order.CapsuleColor, order.CapsuleSize,
		order.CapsuleType, order.CreatedBy, order.CustomerService,
		order.ActualProductionQuantity, order.MaterialYieldQuantity,
		order.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("%s: update order: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx, stmtDeleteIngredients, id); err != nil {
		return fmt.Errorf("%s: delete old ingredients: %w", op, err)
	}
	if _, err = tx.ExecContext(ctx, stmtDeleteWorkLogs, id); err != nil {
		return fmt.Errorf("%s: delete old work-logs: %w", op, err)
	}

	if err := insertChildren(ctx, tx, order); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}
