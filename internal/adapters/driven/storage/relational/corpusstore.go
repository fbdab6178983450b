package relational

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/logger"
)

// corpusStore implements driven.CorpusStore.
type corpusStore struct {
	store *Store
}

var _ driven.CorpusStore = (*corpusStore)(nil)

const courseColumns = `code, name, knowledge, skills, general_competence, content,
	literature, details, normalized_text, keywords, embedding`

// List returns every course in insertion order.
func (s *corpusStore) List(ctx context.Context) ([]domain.Course, error) {
	rows, err := s.store.query(ctx, "SELECT "+courseColumns+" FROM courses ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course //nolint:prealloc // size unknown from query
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating courses: %w", err)
	}
	return courses, nil
}

// Get retrieves a course by code.
func (s *corpusStore) Get(ctx context.Context, code string) (*domain.Course, error) {
	row := s.store.queryRow(ctx, "SELECT "+courseColumns+" FROM courses WHERE code = ?", code)
	course, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return course, err
}

// Upsert inserts a course or replaces the record with the same code.
// A replaced course keeps its original position.
func (s *corpusStore) Upsert(ctx context.Context, course domain.Course) error {
	if course.IsEphemeral() {
		return domain.ErrEphemeralCourse
	}

	details, err := json.Marshal(course.Details)
	if err != nil {
		return fmt.Errorf("marshalling details: %w", err)
	}
	keywords, err := encodeKeywords(course.Keywords)
	if err != nil {
		return fmt.Errorf("marshalling keywords: %w", err)
	}

	_, err = s.store.exec(ctx, `
		INSERT INTO courses (code, position, name, knowledge, skills, general_competence,
			content, literature, details, normalized_text, keywords, embedding)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM courses), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			knowledge = excluded.knowledge,
			skills = excluded.skills,
			general_competence = excluded.general_competence,
			content = excluded.content,
			literature = excluded.literature,
			details = excluded.details,
			normalized_text = excluded.normalized_text,
			keywords = excluded.keywords,
			embedding = excluded.embedding
	`, course.Code, course.Name, course.Knowledge, course.Skills, course.GeneralCompetence,
		course.Content, nullString(course.Literature), string(details), course.NormalizedText,
		keywords, float32SliceToBytes(course.Embedding))
	if err != nil {
		return fmt.Errorf("saving course: %w", err)
	}
	return nil
}

// SaveDerived updates derived fields in a single transaction.
// Unknown codes are ignored.
func (s *corpusStore) SaveDerived(ctx context.Context, courses []domain.Course) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, s.store.rebind(`
		UPDATE courses SET normalized_text = ?, keywords = ?, embedding = ?
		WHERE code = ?
	`))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range courses {
		keywords, err := encodeKeywords(c.Keywords)
		if err != nil {
			return fmt.Errorf("marshalling keywords: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, c.NormalizedText, keywords,
			float32SliceToBytes(c.Embedding), c.Code); err != nil {
			return fmt.Errorf("saving derived fields for %s: %w", c.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close releases this handle on the shared connection.
func (s *corpusStore) Close() error {
	return s.store.release()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*domain.Course, error) {
	var (
		c          domain.Course
		literature sql.NullString
		details    string
		keywords   string
		embedding  []byte
	)
	if err := row.Scan(&c.Code, &c.Name, &c.Knowledge, &c.Skills, &c.GeneralCompetence,
		&c.Content, &literature, &details, &c.NormalizedText, &keywords, &embedding); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning course: %w", err)
	}

	if literature.Valid {
		c.Literature = &literature.String
	}
	if err := json.Unmarshal([]byte(details), &c.Details); err != nil {
		logger.Warn("course %s: ignoring malformed details: %v", c.Code, err)
	}
	c.Keywords = decodeKeywords(keywords)

	vec, ok := bytesToFloat32Slice(embedding)
	if !ok {
		logger.Warn("course %s: ignoring malformed embedding (%d bytes)", c.Code, len(embedding))
	}
	c.Embedding = vec
	return &c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
