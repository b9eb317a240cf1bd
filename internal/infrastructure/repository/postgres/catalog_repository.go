package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/infrastructure/resilience"
)

// CatalogRepository reads and writes departments and categories. Reads go through the
// resilience executor when one is configured.
type CatalogRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewCatalogRepository(db *sql.DB, executor *resilience.Executor) *CatalogRepository {
	return &CatalogRepository{db: db, executor: executor}
}

func (r *CatalogRepository) execute(ctx context.Context, operation string, call func(context.Context) error) error {
	var err error
	if r.executor != nil {
		err = r.executor.Execute(ctx, operation, call, classifyPostgresError)
	} else {
		err = call(ctx)
	}
	return wrapDBError(operation, err)
}

func (r *CatalogRepository) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	var out []domain.Department
	err := r.execute(ctx, "postgres.list_departments", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, `
SELECT department_id, department_name, description
FROM departments
ORDER BY department_id
`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var dep domain.Department
			if err := rows.Scan(&dep.ID, &dep.Name, &dep.Description); err != nil {
				return fmt.Errorf("scan department: %w", err)
			}
			out = append(out, dep)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error) {
	query := `
SELECT category_id, category_name, category_code, description, department_id, keywords, priority_weight, is_active, created_at
FROM categories
WHERE ($1::BIGINT IS NULL OR department_id = $1)
`
	if filter.ActiveOnly {
		query += "AND is_active = TRUE\n"
	}
	query += "ORDER BY category_id"

	var departmentID interface{}
	if filter.DepartmentID != nil {
		departmentID = *filter.DepartmentID
	}

	var out []domain.Category
	err := r.execute(ctx, "postgres.list_categories", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, query, departmentID)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			cat, err := scanCategory(rows)
			if err != nil {
				return err
			}
			out = append(out, cat)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertCatalog inserts or updates every department and category of the snapshot.
func (r *CatalogRepository) UpsertCatalog(ctx context.Context, snapshot domain.CatalogSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("begin catalog tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := writeCatalog(ctx, tx, snapshot); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapDBError("commit catalog tx", err)
	}
	return nil
}

// SeedCatalog writes the snapshot only when the department table is empty.
// It reports whether anything was written.
func (r *CatalogRepository) SeedCatalog(ctx context.Context, snapshot domain.CatalogSnapshot) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, wrapDBError("begin seed tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey+1); err != nil {
		return false, wrapDBError("acquire seed lock", err)
	}
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM departments`).Scan(&count); err != nil {
		return false, wrapDBError("count departments", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := writeCatalog(ctx, tx, snapshot); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, wrapDBError("commit seed tx", err)
	}
	return true, nil
}

func writeCatalog(ctx context.Context, tx *sql.Tx, snapshot domain.CatalogSnapshot) error {
	for _, dep := range snapshot.Departments {
		_, err := tx.ExecContext(ctx, `
INSERT INTO departments (department_id, department_name, description)
VALUES ($1,$2,$3)
ON CONFLICT (department_id) DO UPDATE
SET department_name = EXCLUDED.department_name, description = EXCLUDED.description
`, dep.ID, dep.Name, dep.Description)
		if err != nil {
			return wrapDBError(fmt.Sprintf("upsert department %d", dep.ID), err)
		}
	}
	for _, cat := range snapshot.Categories {
		keywords := cat.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		keywordsJSON, err := json.Marshal(keywords)
		if err != nil {
			return fmt.Errorf("marshal keywords: %w", err)
		}
		weight := cat.PriorityWeight
		if weight <= 0 {
			weight = 1
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO categories (category_id, category_name, category_code, description, department_id, keywords, priority_weight, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (category_id) DO UPDATE
SET category_name = EXCLUDED.category_name,
	category_code = EXCLUDED.category_code,
	description = EXCLUDED.description,
	department_id = EXCLUDED.department_id,
	keywords = EXCLUDED.keywords,
	priority_weight = EXCLUDED.priority_weight,
	is_active = EXCLUDED.is_active
`, cat.ID, cat.Name, cat.Code, cat.Description, cat.DepartmentID, keywordsJSON, weight, cat.Active)
		if err != nil {
			return wrapDBError(fmt.Sprintf("upsert category %d", cat.ID), err)
		}
	}
	return nil
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var cat domain.Category
	var keywordsRaw []byte
	err := row.Scan(
		&cat.ID,
		&cat.Name,
		&cat.Code,
		&cat.Description,
		&cat.DepartmentID,
		&keywordsRaw,
		&cat.PriorityWeight,
		&cat.Active,
		&cat.CreatedAt,
	)
	if err != nil {
		return domain.Category{}, fmt.Errorf("scan category: %w", err)
	}
	if len(keywordsRaw) > 0 {
		if err := json.Unmarshal(keywordsRaw, &cat.Keywords); err != nil {
			return domain.Category{}, fmt.Errorf("unmarshal keywords for category %d: %w", cat.ID, err)
		}
	}
	return cat, nil
}
