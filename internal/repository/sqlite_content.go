package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
)

// SQLiteContentRepo is the primary content catalog.
type SQLiteContentRepo struct {
	db db.DBTX
}

// NewSQLiteContentRepo creates a new SQLiteContentRepo.
func NewSQLiteContentRepo(conn db.DBTX) *SQLiteContentRepo {
	return &SQLiteContentRepo{db: conn}
}

const contentColumns = `id, subject, title, description, content_type, difficulty_level,
	grade_levels, url, duration_minutes, topics, keywords, source`

// Fetch returns up to count items for subject, best match first: items
// listing the grade, then items without a grade list, then the rest, each
// group by title. count <= 0 returns every match.
func (r *SQLiteContentRepo) Fetch(ctx context.Context, subject string, gradeLevel *int, count int) ([]domain.ContentItem, error) {
	items, err := r.ListBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if gradeLevel != nil {
		g := *gradeLevel
		sort.SliceStable(items, func(i, j int) bool {
			return gradeRank(items[i], g) < gradeRank(items[j], g)
		})
	}
	if count > 0 && len(items) > count {
		items = items[:count]
	}
	return items, nil
}

func gradeRank(c domain.ContentItem, grade int) int {
	switch {
	case len(c.GradeLevels) == 0:
		return 1
	case c.SuitsGrade(grade):
		return 0
	}
	return 2
}

// ListBySubject returns the subject's items ordered by title. Subject
// matching ignores case.
func (r *SQLiteContentRepo) ListBySubject(ctx context.Context, subject string) ([]domain.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items
		WHERE subject = ? COLLATE NOCASE ORDER BY title COLLATE NOCASE, id`
	rows, err := r.db.QueryContext(ctx, query, strings.TrimSpace(subject))
	if err != nil {
		return nil, fmt.Errorf("listing content for %s: %w", subject, err)
	}
	defer rows.Close()

	items := []domain.ContentItem{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r *SQLiteContentRepo) GetByID(ctx context.Context, id string) (*domain.ContentItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content_items WHERE id = ?`, id)
	c, err := scanContent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("content item %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (r *SQLiteContentRepo) Upsert(ctx context.Context, c *domain.ContentItem) error {
	grades, err := encodeJSON(c.GradeLevels)
	if err != nil {
		return err
	}
	topics, err := encodeJSON(c.Topics)
	if err != nil {
		return err
	}
	keywords, err := encodeJSON(c.Keywords)
	if err != nil {
		return err
	}
	now := nowUTC().Format(timeLayout)
	query := `INSERT INTO content_items (` + contentColumns + `, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject = excluded.subject,
			title = excluded.title,
			description = excluded.description,
			content_type = excluded.content_type,
			difficulty_level = excluded.difficulty_level,
			grade_levels = excluded.grade_levels,
			url = excluded.url,
			duration_minutes = excluded.duration_minutes,
			topics = excluded.topics,
			keywords = excluded.keywords,
			source = excluded.source,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		c.Subject,
		c.Title,
		c.Description,
		string(domain.ParseContentType(string(c.ContentType))),
		string(domain.ParseDifficulty(string(c.DifficultyLevel))),
		grades,
		c.URL,
		c.DurationMinutes,
		topics,
		keywords,
		c.Source,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upserting content item %s: %w", c.ID, err)
	}
	return nil
}

// CountBySubject returns the number of items per subject.
func (r *SQLiteContentRepo) CountBySubject(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT subject, COUNT(*) FROM content_items GROUP BY subject ORDER BY subject`)
	if err != nil {
		return nil, fmt.Errorf("counting content: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var subject string
		var n int
		if err := rows.Scan(&subject, &n); err != nil {
			return nil, fmt.Errorf("scanning content count: %w", err)
		}
		out[subject] = n
	}
	return out, rows.Err()
}

func (r *SQLiteContentRepo) Delete(ctx context.Context, id string) error {
	ok, err := db.ExecMatched(ctx, r.db, `DELETE FROM content_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting content item: %w", err)
	}
	if !ok {
		return fmt.Errorf("content item %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanContent(row scanner) (*domain.ContentItem, error) {
	var c domain.ContentItem
	var ctype, difficulty, grades, topics, keywords string
	err := row.Scan(
		&c.ID,
		&c.Subject,
		&c.Title,
		&c.Description,
		&ctype,
		&difficulty,
		&grades,
		&c.URL,
		&c.DurationMinutes,
		&topics,
		&keywords,
		&c.Source,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning content item: %w", err)
	}
	c.ContentType = domain.ParseContentType(ctype)
	c.DifficultyLevel = domain.ParseDifficulty(difficulty)
	if c.GradeLevels, err = decodeInts(grades); err != nil {
		return nil, err
	}
	if c.Topics, err = decodeStrings(topics); err != nil {
		return nil, err
	}
	if c.Keywords, err = decodeStrings(keywords); err != nil {
		return nil, err
	}
	return &c, nil
}
