package database

import (
	"fmt"

	"gorm.io/gorm"

	"milkroute-backend/models"
)

// MigrateTenantSchema applies (idempotent) schema migrations for a single tenant schema.
// It pins search_path to the tenant and performs:
// - AutoMigrate (tables/columns)
// - Money column types (NUMERIC(12,2))
// - Indexes (pricing overrides, receipts, line items, versions)
// - Basic CHECK constraints, including the receipt order-XOR-invoice rule
// - Idempotency keys table + unique index
func MigrateTenantSchema(schema string) error {
	if schema == "" {
		return fmt.Errorf("schema name is empty")
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		// Pin the tenant schema for this transaction
		if err := tx.Exec(`SET search_path = "` + schema + `", public`).Error; err != nil {
			return fmt.Errorf("set search_path failed: %w", err)
		}

		// --- AutoMigrate tables/columns/index tags (non-destructive) ---
		if err := tx.AutoMigrate(
			&models.Product{},
			&models.DealerGroup{},
			&models.Party{},
			&models.PricingOverride{},
			&models.Document{},
			&models.LineItem{},
			&models.DocumentVersion{},
			&models.Receipt{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("tenant automigrate failed: %w", err)
		}

		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE products          ALTER COLUMN selling_price          TYPE numeric(12,2)`,
			`ALTER TABLE products          ALTER COLUMN cost_price             TYPE numeric(12,2)`,
			`ALTER TABLE parties           ALTER COLUMN current_balance        TYPE numeric(12,2)`,
			`ALTER TABLE parties           ALTER COLUMN credit_limit           TYPE numeric(12,2)`,
			`ALTER TABLE pricing_overrides ALTER COLUMN base_price             TYPE numeric(12,2)`,
			`ALTER TABLE pricing_overrides ALTER COLUMN selling_price          TYPE numeric(12,2)`,
			`ALTER TABLE documents         ALTER COLUMN subtotal               TYPE numeric(12,2)`,
			`ALTER TABLE documents         ALTER COLUMN total                  TYPE numeric(12,2)`,
			`ALTER TABLE documents         ALTER COLUMN paid_amount            TYPE numeric(12,2)`,
			`ALTER TABLE documents         ALTER COLUMN due_amount             TYPE numeric(12,2)`,
			`ALTER TABLE line_items        ALTER COLUMN unit_price             TYPE numeric(12,2)`,
			`ALTER TABLE line_items        ALTER COLUMN taxable_value          TYPE numeric(12,2)`,
			`ALTER TABLE line_items        ALTER COLUMN tax_amount             TYPE numeric(12,2)`,
			`ALTER TABLE line_items        ALTER COLUMN line_total             TYPE numeric(12,2)`,
			`ALTER TABLE receipts          ALTER COLUMN amount                 TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_document_versions_doc_version ON document_versions (document_id, version_no)`,
			`CREATE INDEX IF NOT EXISTS idx_receipts_order_paid_at ON receipts (order_id, paid_at)`,
			`CREATE INDEX IF NOT EXISTS idx_receipts_invoice_paid_at ON receipts (invoice_id, paid_at)`,
			`CREATE INDEX IF NOT EXISTS idx_line_items_document ON line_items (document_id)`,
			`CREATE INDEX IF NOT EXISTS idx_line_items_product ON line_items (product_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Receipt links exactly one of order/invoice
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'receipts'::regclass
					  AND conname  = 'chk_receipts_single_link'
				) THEN
					ALTER TABLE receipts
					ADD CONSTRAINT chk_receipts_single_link
					CHECK (NOT (order_id IS NOT NULL AND invoice_id IS NOT NULL));
				END IF;
			END $$;`,
			// Receipt amounts are strictly positive
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'receipts'::regclass
					  AND conname  = 'chk_receipts_amount_positive'
				) THEN
					ALTER TABLE receipts
					ADD CONSTRAINT chk_receipts_amount_positive
					CHECK (amount > 0);
				END IF;
			END $$;`,
			// Non-negative product price
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'products'::regclass
					  AND conname  = 'chk_products_selling_price_nonneg'
				) THEN
					ALTER TABLE products
					ADD CONSTRAINT chk_products_selling_price_nonneg
					CHECK (selling_price >= 0);
				END IF;
			END $$;`,
			// Line item quantity > 0
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'line_items'::regclass
					  AND conname  = 'chk_line_items_quantity_positive'
				) THEN
					ALTER TABLE line_items
					ADD CONSTRAINT chk_line_items_quantity_positive
					CHECK (quantity > 0);
				END IF;
			END $$;`,
			// Pricing override scoped to a party or a group, never both
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'pricing_overrides'::regclass
					  AND conname  = 'chk_pricing_overrides_single_scope'
				) THEN
					ALTER TABLE pricing_overrides
					ADD CONSTRAINT chk_pricing_overrides_single_scope
					CHECK ((party_id IS NULL) <> (group_id IS NULL));
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
