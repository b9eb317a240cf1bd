package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/grievease/petition-triage/internal/core/domain"
)

type PetitionRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPetitionRepository(db *sql.DB) *PetitionRepository {
	return &PetitionRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const petitionColumns = `petition_id, citizen_id, title, short_description, description, state, district, taluk, location,
	status, is_public, department_id, department, category_id, category, urgency_level,
	classification_confidence, manually_classified, submitted_at, due_date`

func (r *PetitionRepository) Create(ctx context.Context, p *domain.Petition) error {
	err := r.db.QueryRowContext(ctx, `
INSERT INTO petitions (
	citizen_id, title, short_description, description, state, district, taluk, location,
	status, is_public, department_id, department, category_id, category, urgency_level,
	classification_confidence, manually_classified, submitted_at, due_date, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
RETURNING petition_id
`,
		p.CitizenID, p.Title, p.ShortDescription, p.Description, p.State, p.District, p.Taluk, p.Location,
		string(p.Status), p.IsPublic, p.DepartmentID, p.Department, p.CategoryID, p.Category, string(p.UrgencyLevel),
		p.ClassificationConfidence, p.ManuallyClassified, p.SubmittedAt, p.DueDate, r.now(),
	).Scan(&p.ID)
	if err != nil {
		return wrapDBError("insert petition", err)
	}
	return nil
}

func (r *PetitionRepository) GetByID(ctx context.Context, id int64) (*domain.Petition, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+petitionColumns+`
FROM petitions
WHERE petition_id = $1
`, id)

	p, err := scanPetition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrPetitionNotFound, "get petition", fmt.Errorf("id=%d", id))
		}
		return nil, wrapDBError("scan petition", err)
	}
	return &p, nil
}

// SaveClassification writes an automatic result. Rows an officer already classified
// are skipped by the WHERE clause and reported as domain.ErrAlreadyManual.
func (r *PetitionRepository) SaveClassification(ctx context.Context, id int64, result domain.ClassificationResult) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE petitions
SET department_id = $2, department = $3, category_id = $4, category = $5,
	urgency_level = $6, classification_confidence = $7, updated_at = $8
WHERE petition_id = $1 AND manually_classified = FALSE
`, id, result.DepartmentID, result.DepartmentName, result.CategoryID, result.CategoryName,
		string(result.UrgencyLevel), result.Confidence, r.now())
	if err != nil {
		return wrapDBError("save classification", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save classification rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var manual bool
	err = r.db.QueryRowContext(ctx, `SELECT manually_classified FROM petitions WHERE petition_id = $1`, id).Scan(&manual)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.WrapError(domain.ErrPetitionNotFound, "save classification", fmt.Errorf("id=%d", id))
	case err != nil:
		return wrapDBError("check manual classification", err)
	case manual:
		return domain.WrapError(domain.ErrAlreadyManual, "save classification", fmt.Errorf("id=%d", id))
	default:
		return fmt.Errorf("save classification: no rows updated for id=%d", id)
	}
}

// ApplyReclassification stores an officer override and its audit row in one transaction.
func (r *PetitionRepository) ApplyReclassification(ctx context.Context, rec *domain.Reclassification) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("begin reclassification tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `
UPDATE petitions
SET department_id = $2, department = $3, category_id = $4, category = $5,
	classification_confidence = $6, manually_classified = TRUE, updated_at = $7
WHERE petition_id = $1
`, rec.PetitionID, rec.NewDepartmentID, rec.NewDepartment, rec.NewCategoryID, rec.NewCategory,
		domain.ManualConfidence, rec.CreatedAt)
	if err != nil {
		return wrapDBError("update petition classification", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update petition rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrPetitionNotFound, "apply reclassification", fmt.Errorf("id=%d", rec.PetitionID))
	}

	err = tx.QueryRowContext(ctx, `
INSERT INTO petition_reclassifications (
	petition_id, previous_department_id, previous_category_id, new_department_id, new_category_id, officer_id, note, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`, rec.PetitionID, rec.PreviousDepartmentID, rec.PreviousCategoryID, rec.NewDepartmentID, rec.NewCategoryID,
		rec.OfficerID, rec.Note, rec.CreatedAt).Scan(&rec.ID)
	if err != nil {
		return wrapDBError("insert reclassification audit", err)
	}

	if err := tx.Commit(); err != nil {
		return wrapDBError("commit reclassification tx", err)
	}
	return nil
}

func (r *PetitionRepository) ListReclassifications(ctx context.Context, petitionID int64) ([]domain.Reclassification, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, petition_id, previous_department_id, previous_category_id, new_department_id, new_category_id, officer_id, note, created_at
FROM petition_reclassifications
WHERE petition_id = $1
ORDER BY created_at, id
`, petitionID)
	if err != nil {
		return nil, wrapDBError("list reclassifications", err)
	}
	defer rows.Close()

	out := make([]domain.Reclassification, 0)
	for rows.Next() {
		var rec domain.Reclassification
		if err := rows.Scan(
			&rec.ID,
			&rec.PetitionID,
			&rec.PreviousDepartmentID,
			&rec.PreviousCategoryID,
			&rec.NewDepartmentID,
			&rec.NewCategoryID,
			&rec.OfficerID,
			&rec.Note,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reclassification: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reclassifications: %w", err)
	}
	return out, nil
}

func (r *PetitionRepository) UrgencyDistribution(ctx context.Context) ([]domain.UrgencyCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT urgency_level, COUNT(*)
FROM petitions
GROUP BY urgency_level
`)
	if err != nil {
		return nil, wrapDBError("urgency distribution", err)
	}
	defer rows.Close()

	out := make([]domain.UrgencyCount, 0, 4)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scan urgency count: %w", err)
		}
		out = append(out, domain.UrgencyCount{Urgency: domain.UrgencyLevel(level), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate urgency counts: %w", err)
	}
	return out, nil
}

func (r *PetitionRepository) DepartmentStats(ctx context.Context) ([]domain.DepartmentStat, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT department_id, department,
	COUNT(*),
	COUNT(*) FILTER (WHERE status = 'resolved'),
	COUNT(*) FILTER (WHERE status NOT IN ('resolved', 'rejected'))
FROM petitions
GROUP BY department_id, department
ORDER BY COUNT(*) DESC, department_id
`)
	if err != nil {
		return nil, wrapDBError("department stats", err)
	}
	defer rows.Close()

	out := make([]domain.DepartmentStat, 0)
	for rows.Next() {
		var s domain.DepartmentStat
		if err := rows.Scan(&s.DepartmentID, &s.Department, &s.Total, &s.Resolved, &s.Pending); err != nil {
			return nil, fmt.Errorf("scan department stat: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate department stats: %w", err)
	}
	return out, nil
}

func scanPetition(row rowScanner) (domain.Petition, error) {
	var p domain.Petition
	var status, urgency string
	err := row.Scan(
		&p.ID,
		&p.CitizenID,
		&p.Title,
		&p.ShortDescription,
		&p.Description,
		&p.State,
		&p.District,
		&p.Taluk,
		&p.Location,
		&status,
		&p.IsPublic,
		&p.DepartmentID,
		&p.Department,
		&p.CategoryID,
		&p.Category,
		&urgency,
		&p.ClassificationConfidence,
		&p.ManuallyClassified,
		&p.SubmittedAt,
		&p.DueDate,
	)
	if err != nil {
		return domain.Petition{}, err
	}
	p.Status = domain.PetitionStatus(status)
	p.UrgencyLevel = domain.UrgencyLevel(urgency)
	return p, nil
}
