package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
)

// SQLiteStudentProfileRepo implements StudentProfileRepo using a SQLite database.
type SQLiteStudentProfileRepo struct {
	db db.DBTX
}

// NewSQLiteStudentProfileRepo creates a new SQLiteStudentProfileRepo.
func NewSQLiteStudentProfileRepo(conn db.DBTX) *SQLiteStudentProfileRepo {
	return &SQLiteStudentProfileRepo{db: conn}
}

const studentColumns = `id, owner_id, full_name, grade_level, learning_style,
	interests, strengths, areas_for_improvement, created_at, updated_at`

func (r *SQLiteStudentProfileRepo) Create(ctx context.Context, s *domain.StudentProfile) error {
	interests, strengths, improve, err := encodeStudentLists(s)
	if err != nil {
		return err
	}
	query := `INSERT INTO student_profiles (` + studentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.OwnerID,
		s.FullName,
		nullableIntToValue(s.GradeLevel),
		string(s.LearningStyle),
		interests,
		strengths,
		improve,
		s.CreatedAt.UTC().Format(timeLayout),
		s.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting student profile: %w", err)
	}
	return nil
}

func (r *SQLiteStudentProfileRepo) GetByID(ctx context.Context, id, ownerID string) (*domain.StudentProfile, error) {
	clause, args := ownerClause(ownerID)
	query := `SELECT ` + studentColumns + ` FROM student_profiles WHERE id = ?` + clause
	row := r.db.QueryRowContext(ctx, query, append([]any{id}, args...)...)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("student profile %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return s, nil
}

func (r *SQLiteStudentProfileRepo) List(ctx context.Context, ownerID string) ([]*domain.StudentProfile, error) {
	query := `SELECT ` + studentColumns + ` FROM student_profiles`
	var args []any
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY full_name, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing student profiles: %w", err)
	}
	defer rows.Close()

	var out []*domain.StudentProfile
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteStudentProfileRepo) Update(ctx context.Context, s *domain.StudentProfile) error {
	interests, strengths, improve, err := encodeStudentLists(s)
	if err != nil {
		return err
	}
	query := `UPDATE student_profiles SET full_name = ?, grade_level = ?, learning_style = ?,
		interests = ?, strengths = ?, areas_for_improvement = ?, updated_at = ?
		WHERE id = ?`
	ok, err := db.ExecMatched(ctx, r.db, query,
		s.FullName,
		nullableIntToValue(s.GradeLevel),
		string(s.LearningStyle),
		interests,
		strengths,
		improve,
		s.UpdatedAt.UTC().Format(timeLayout),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating student profile: %w", err)
	}
	if !ok {
		return fmt.Errorf("student profile %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteStudentProfileRepo) Delete(ctx context.Context, id, ownerID string) error {
	clause, args := ownerClause(ownerID)
	ok, err := db.ExecMatched(ctx, r.db, `DELETE FROM student_profiles WHERE id = ?`+clause, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("deleting student profile: %w", err)
	}
	if !ok {
		return fmt.Errorf("student profile %s: %w", id, ErrNotFound)
	}
	return nil
}

func encodeStudentLists(s *domain.StudentProfile) (string, string, string, error) {
	interests, err := encodeJSON(s.Interests)
	if err != nil {
		return "", "", "", err
	}
	strengths, err := encodeJSON(s.Strengths)
	if err != nil {
		return "", "", "", err
	}
	improve, err := encodeJSON(s.AreasForImprovement)
	if err != nil {
		return "", "", "", err
	}
	return interests, strengths, improve, nil
}

func scanStudent(row scanner) (*domain.StudentProfile, error) {
	var s domain.StudentProfile
	var grade sql.NullInt64
	var style, interests, strengths, improve, createdAt, updatedAt string
	err := row.Scan(
		&s.ID,
		&s.OwnerID,
		&s.FullName,
		&grade,
		&style,
		&interests,
		&strengths,
		&improve,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning student profile: %w", err)
	}
	s.GradeLevel = nullIntToPtr(grade)
	s.LearningStyle = domain.ParseLearningStyle(style)
	if s.Interests, err = decodeStrings(interests); err != nil {
		return nil, err
	}
	if s.Strengths, err = decodeStrings(strengths); err != nil {
		return nil, err
	}
	if s.AreasForImprovement, err = decodeStrings(improve); err != nil {
		return nil, err
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}
