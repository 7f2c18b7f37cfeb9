package mysql

import (
	"database/sql"
	"fmt"
	"os"
	"testing"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/capsuledb_test?parseTime=true"
	}

	var err error
	testDB, err = sql.Open("mysql", dsn)
	if err != nil {
		panic(fmt.Errorf("failed to open test db: %w", err))
	}
	defer testDB.Close()

	if err := testDB.Ping(); err != nil {
		// No test database on this machine; the storage suite needs a live
		// MySQL (see TEST_MYSQL_DSN).
		fmt.Println("skipping storage tests, test db not reachable:", err)
		os.Exit(0)
	}

	if err := createTestSchema(); err != nil {
		panic(fmt.Errorf("failed to create test schema: %w", err))
	}

	os.Exit(m.Run())
}

func createTestSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS production_orders (
			id CHAR(36) PRIMARY KEY,
			customer_name VARCHAR(100) NOT NULL,
			product_name VARCHAR(100) NOT NULL,
			production_quantity BIGINT NOT NULL,
			unit_weight_mg DECIMAL(18,5) NOT NULL DEFAULT 0,
			batch_total_weight_mg DECIMAL(24,5) NOT NULL DEFAULT 0,
			completion_date DATE NULL,
			process_issues TEXT NULL,
			quality_notes TEXT NULL,
			capsule_color VARCHAR(50) NULL,
			capsule_size VARCHAR(10) NULL,
			capsule_type VARCHAR(20) NULL,
			created_by VARCHAR(100) NULL,
			customer_service VARCHAR(100) NULL,
			actual_production_quantity DOUBLE NULL,
			material_yield_quantity DOUBLE NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ingredients (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			order_id CHAR(36) NOT NULL,
			material_name VARCHAR(100) NOT NULL,
			unit_content_mg DECIMAL(18,5) NOT NULL,
			is_customer_provided BOOLEAN NOT NULL DEFAULT TRUE,
			is_customer_supplied BOOLEAN NOT NULL DEFAULT TRUE,
			CONSTRAINT fk_ingredients_order FOREIGN KEY (order_id)
				REFERENCES production_orders (id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS work_logs (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			order_id CHAR(36) NOT NULL,
			work_date DATETIME NOT NULL,
			headcount INT NOT NULL,
			start_time CHAR(5) NOT NULL,
			end_time CHAR(5) NOT NULL,
			notes TEXT NULL,
			effective_minutes BIGINT NOT NULL DEFAULT 0,
			calculated_work_units DECIMAL(12,4) NOT NULL DEFAULT 0,
			CONSTRAINT fk_work_logs_order FOREIGN KEY (order_id)
				REFERENCES production_orders (id) ON DELETE CASCADE
		)`,
	}

	for _, stmt := range stmts {
		if _, err := testDB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
