// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/swimlog/internal/daterange"
	"github.com/verte-zerg/swimlog/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access for meets, results and standards.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meets (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT NOT NULL,
			course TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			meet_id INTEGER REFERENCES meets(id) ON DELETE CASCADE,
			distance INTEGER NOT NULL,
			stroke TEXT NOT NULL,
			course TEXT NOT NULL,
			time_ms INTEGER NOT NULL,
			swam_on TEXT NOT NULL,
			notes TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS standards (
			id INTEGER PRIMARY KEY,
			set_name TEXT NOT NULL,
			name TEXT NOT NULL,
			distance INTEGER NOT NULL,
			stroke TEXT NOT NULL,
			course TEXT NOT NULL,
			gender TEXT NOT NULL,
			age_min INTEGER NOT NULL,
			age_max INTEGER NOT NULL,
			time_ms INTEGER NOT NULL,
			UNIQUE (set_name, name, distance, stroke, course, gender, age_min, age_max)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_event ON results(distance, stroke, course);`,
		`CREATE INDEX IF NOT EXISTS idx_results_swam_on ON results(swam_on);`,
		`CREATE INDEX IF NOT EXISTS idx_standards_event ON standards(distance, stroke, course);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertMeet stores a meet and returns its id.
func (s *Store) InsertMeet(ctx context.Context, m model.Meet) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO meets (name, location, course, start_date, end_date) VALUES (?, ?, ?, ?, ?)`,
		m.Name,
		m.Location,
		string(m.Course),
		daterange.FormatDate(m.StartDate),
		daterange.FormatDate(m.EndDate),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetMeet loads a single meet.
func (s *Store) GetMeet(ctx context.Context, id int64) (model.Meet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, location, course, start_date, end_date FROM meets WHERE id = ?`, id)
	m, err := scanMeet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Meet{}, fmt.Errorf("meet %d: %w", id, ErrNotFound)
	}
	return m, err
}

// ListMeets returns meets ordered by start date.
func (s *Store) ListMeets(ctx context.Context) ([]model.Meet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, location, course, start_date, end_date FROM meets ORDER BY start_date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var meets []model.Meet
	for rows.Next() {
		m, err := scanMeet(rows)
		if err != nil {
			return nil, err
		}
		meets = append(meets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meets, nil
}

// DeleteMeet removes a meet and its results.
func (s *Store) DeleteMeet(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM results WHERE meet_id = ?`, id); err != nil {
		return err
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx, `DELETE FROM meets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	var n int64
	n, err = res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("meet %d: %w", id, ErrNotFound)
		return err
	}
	err = tx.Commit()
	return err
}

// InsertResult stores a result and returns its id.
func (s *Store) InsertResult(ctx context.Context, r model.Result) (int64, error) {
	var meetID any
	if r.MeetID > 0 {
		meetID = r.MeetID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO results (meet_id, distance, stroke, course, time_ms, swam_on, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		meetID,
		r.Event.Distance,
		string(r.Event.Stroke),
		string(r.Course),
		r.TimeMs,
		daterange.FormatDate(r.SwamOn),
		r.Notes,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteResult removes a result.
func (s *Store) DeleteResult(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("result %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListResults returns results matching the filter in chronological order.
// When filter.Last is set only the most recent results are returned.
func (s *Store) ListResults(ctx context.Context, filter model.ResultFilter) ([]model.Result, error) {
	clauses, args := resultClauses(filter)
	query := fmt.Sprintf(`SELECT r.id, COALESCE(r.meet_id, 0), r.distance, r.stroke, r.course, r.time_ms, r.swam_on, r.notes, COALESCE(m.name, '')
		FROM results r
		LEFT JOIN meets m ON m.id = r.meet_id
		WHERE %s
		ORDER BY r.swam_on ASC, r.id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.Result
	for rows.Next() {
		var (
			r      model.Result
			stroke string
			course string
			swamOn string
		)
		if err := rows.Scan(&r.ID, &r.MeetID, &r.Event.Distance, &stroke, &course, &r.TimeMs, &swamOn, &r.Notes, &r.MeetName); err != nil {
			return nil, err
		}
		r.Event.Stroke = model.Stroke(stroke)
		r.Course = model.Course(course)
		parsed, err := daterange.ParseDate(swamOn)
		if err != nil {
			return nil, err
		}
		r.SwamOn = parsed
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(results) > filter.Last {
		results = results[len(results)-filter.Last:]
	}
	return results, nil
}

// PersonalBests returns the fastest result per event and course.
func (s *Store) PersonalBests(ctx context.Context, filter model.ResultFilter) ([]model.PersonalBest, error) {
	clauses, args := resultClauses(filter)
	where := strings.Join(clauses, " AND ")
	query := fmt.Sprintf(`WITH filtered AS (
		SELECT r.* FROM results r WHERE %s
	), ranked AS (
		SELECT f.distance, f.stroke, f.course, f.time_ms, f.swam_on, f.meet_id,
			ROW_NUMBER() OVER (PARTITION BY f.distance, f.stroke, f.course ORDER BY f.time_ms ASC, f.swam_on ASC, f.id ASC) AS rn,
			COUNT(*) OVER (PARTITION BY f.distance, f.stroke, f.course) AS swims
		FROM filtered f
	)
	SELECT k.distance, k.stroke, k.course, k.time_ms, k.swam_on, COALESCE(m.name, ''), k.swims
	FROM ranked k
	LEFT JOIN meets m ON m.id = k.meet_id
	WHERE k.rn = 1
	ORDER BY k.course ASC, k.stroke ASC, k.distance ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var bests []model.PersonalBest
	for rows.Next() {
		var (
			pb     model.PersonalBest
			stroke string
			course string
			swamOn string
		)
		if err := rows.Scan(&pb.Event.Distance, &stroke, &course, &pb.TimeMs, &swamOn, &pb.MeetName, &pb.Swims); err != nil {
			return nil, err
		}
		pb.Event.Stroke = model.Stroke(stroke)
		pb.Course = model.Course(course)
		parsed, err := daterange.ParseDate(swamOn)
		if err != nil {
			return nil, err
		}
		pb.SwamOn = parsed
		bests = append(bests, pb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bests, nil
}

// UpsertStandards stores standards, replacing times of matching rows.
func (s *Store) UpsertStandards(ctx context.Context, standards []model.Standard) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO standards (set_name, name, distance, stroke, course, gender, age_min, age_max, time_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (set_name, name, distance, stroke, course, gender, age_min, age_max)
		 DO UPDATE SET time_ms = excluded.time_ms`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, st := range standards {
		if _, err = stmt.ExecContext(ctx, st.Set, st.Name, st.Event.Distance, string(st.Event.Stroke),
			string(st.Course), string(st.Gender), st.AgeMin, st.AgeMax, st.TimeMs); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(standards), nil
}

// ListStandards returns standards matching the filter, fastest first.
func (s *Store) ListStandards(ctx context.Context, filter model.StandardFilter) ([]model.Standard, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Set != "" {
		clauses = append(clauses, "set_name = ?")
		args = append(args, filter.Set)
	}
	if filter.Event != nil {
		clauses = append(clauses, "distance = ?", "stroke = ?")
		args = append(args, filter.Event.Distance, string(filter.Event.Stroke))
	}
	if filter.Course != "" {
		clauses = append(clauses, "course = ?")
		args = append(args, string(filter.Course))
	}
	if filter.Gender != "" {
		clauses = append(clauses, "(gender = ? OR gender = ?)")
		args = append(args, string(filter.Gender), string(model.GenderMixed))
	}
	if filter.Age > 0 {
		clauses = append(clauses, "(age_min = 0 OR age_min <= ?)", "(age_max = 0 OR age_max >= ?)")
		args = append(args, filter.Age, filter.Age)
	}
	query := fmt.Sprintf(`SELECT id, set_name, name, distance, stroke, course, gender, age_min, age_max, time_ms
		FROM standards
		WHERE %s
		ORDER BY set_name ASC, course ASC, stroke ASC, distance ASC, time_ms ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Standard
	for rows.Next() {
		var (
			st     model.Standard
			stroke string
			course string
			gender string
		)
		if err := rows.Scan(&st.ID, &st.Set, &st.Name, &st.Event.Distance, &stroke, &course, &gender, &st.AgeMin, &st.AgeMax, &st.TimeMs); err != nil {
			return nil, err
		}
		st.Event.Stroke = model.Stroke(stroke)
		st.Course = model.Course(course)
		st.Gender = model.Gender(gender)
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListStandardSets returns the distinct standard set names.
func (s *Store) ListStandardSets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT set_name FROM standards ORDER BY set_name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var sets []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		sets = append(sets, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

// DeleteStandardSet removes every standard in a set and returns the count.
func (s *Store) DeleteStandardSet(ctx context.Context, set string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM standards WHERE set_name = ?`, set)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeet(row rowScanner) (model.Meet, error) {
	var (
		m      model.Meet
		course string
		start  string
		end    string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Location, &course, &start, &end); err != nil {
		return model.Meet{}, err
	}
	m.Course = model.Course(course)
	span, err := daterange.ParseSpan(start, end)
	if err != nil {
		return model.Meet{}, err
	}
	m.StartDate = span.Start
	m.EndDate = span.End
	return m, nil
}

func resultClauses(filter model.ResultFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Event != nil {
		clauses = append(clauses, "r.distance = ?", "r.stroke = ?")
		args = append(args, filter.Event.Distance, string(filter.Event.Stroke))
	}
	if filter.Stroke != "" {
		clauses = append(clauses, "r.stroke = ?")
		args = append(args, string(filter.Stroke))
	}
	if filter.Course != "" {
		clauses = append(clauses, "r.course = ?")
		args = append(args, string(filter.Course))
	}
	if filter.MeetID > 0 {
		clauses = append(clauses, "r.meet_id = ?")
		args = append(args, filter.MeetID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "r.swam_on >= ?")
		args = append(args, filter.Since.Format(time.DateOnly))
	}
	return clauses, args
}
