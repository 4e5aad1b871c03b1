package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
)

// SQLitePlanRepo stores each plan as one JSON document. Status, progress
// and plan type are copied into columns for filtering.
type SQLitePlanRepo struct {
	db db.DBTX
}

// NewSQLitePlanRepo creates a new SQLitePlanRepo.
func NewSQLitePlanRepo(conn db.DBTX) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: conn}
}

// Save inserts the plan or replaces the stored document. Last write wins,
// but the owner and student of an existing row never change.
func (r *SQLitePlanRepo) Save(ctx context.Context, p *domain.LearningPlan) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding plan %s: %w", p.ID, err)
	}
	query := `INSERT INTO learning_plans (id, owner_id, student_id, status, progress_percentage, plan_type, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			progress_percentage = excluded.progress_percentage,
			plan_type = excluded.plan_type,
			document = excluded.document,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.OwnerID,
		p.StudentID,
		string(p.Status),
		p.ProgressPercentage,
		string(planTypeOf(p)),
		string(doc),
		p.CreatedAt.UTC().Format(timeLayout),
		p.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving plan %s: %w", p.ID, err)
	}
	return nil
}

func (r *SQLitePlanRepo) Get(ctx context.Context, planID, ownerID string) (*domain.LearningPlan, error) {
	clause, args := ownerClause(ownerID)
	query := `SELECT document FROM learning_plans WHERE id = ?` + clause
	row := r.db.QueryRowContext(ctx, query, append([]any{planID}, args...)...)

	var doc string
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("learning plan %s: %w", planID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning learning plan: %w", err)
	}
	return decodePlan(doc)
}

// List returns plans newest first.
func (r *SQLitePlanRepo) List(ctx context.Context, f PlanFilter) ([]*domain.LearningPlan, error) {
	var where []string
	var args []any
	if f.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.StudentID != "" {
		where = append(where, "student_id = ?")
		args = append(args, f.StudentID)
	}
	if f.PlanType != "" {
		where = append(where, "plan_type = ?")
		args = append(args, string(f.PlanType))
	}
	query := `SELECT document FROM learning_plans`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing learning plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.LearningPlan
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning learning plan: %w", err)
		}
		p, err := decodePlan(doc)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *SQLitePlanRepo) Delete(ctx context.Context, planID, ownerID string) error {
	clause, args := ownerClause(ownerID)
	ok, err := db.ExecMatched(ctx, r.db, `DELETE FROM learning_plans WHERE id = ?`+clause, append([]any{planID}, args...)...)
	if err != nil {
		return fmt.Errorf("deleting learning plan %s: %w", planID, err)
	}
	if !ok {
		return fmt.Errorf("learning plan %s: %w", planID, ErrNotFound)
	}
	return nil
}

// decodePlan restores a stored document with activities in (day, order)
// order.
func decodePlan(doc string) (*domain.LearningPlan, error) {
	var p domain.LearningPlan
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decoding learning plan: %w", err)
	}
	if p.Activities == nil {
		p.Activities = []domain.Activity{}
	}
	p.SortActivities()
	return &p, nil
}

func planTypeOf(p *domain.LearningPlan) domain.PlanType {
	if p.Metadata.PlanType == "" {
		return domain.PlanBalanced
	}
	return p.Metadata.PlanType
}
