package mysql

import (
	"context"
	"fmt"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
)

// DeleteOrder removes the order; ingredients and work-logs go with it via
// the FK cascade. Destructive and immediate: deleting an absent id fails
// with ErrOrderNotFound, including the second of two deletes of the same id.
func (s *Storage) DeleteOrder(ctx context.Context, id string) error {
	const op = "storage.mysql.DeleteOrder"

	res, err := s.db.ExecContext(ctx, `DELETE FROM production_orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: id=%s: %w", op, id, storage.ErrOrderNotFound)
	}

	return nil
}
