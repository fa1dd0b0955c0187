package problem

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getProblemsByIDsQuery = `
		SELECT problem_id, title_ko, level, tags
		FROM problems
		WHERE problem_id = ANY($1)
	`
	listProblemTagsQuery = `
		SELECT problem_id, tags
		FROM problems
		WHERE cardinality(tags) > 0
	`
	listSolvesQuery = `
		SELECT handle, problem_id, level
		FROM solves
		ORDER BY handle, problem_id
	`
	upsertProblemsQuery = `
		INSERT INTO problems (problem_id, title_ko, level, tags)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (problem_id) DO UPDATE
		SET title_ko = EXCLUDED.title_ko, level = EXCLUDED.level, tags = EXCLUDED.tags
	`
	insertSolvesQuery = `
		INSERT INTO solves (handle, problem_id, level)
		SELECT * FROM unnest($1::text[], $2::int[], $3::int[])
		ON CONFLICT (handle, problem_id) DO NOTHING
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []int) (map[int]Problem, error) {
	out := make(map[int]Problem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	arg := make([]int64, len(ids))
	for i, id := range ids {
		arg[i] = int64(id)
	}

	rows, err := r.db.QueryContext(ctx, getProblemsByIDsQuery, pq.Array(arg))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p     Problem
			title sql.NullString
			tags  pq.StringArray
		)
		if err := rows.Scan(&p.ID, &title, &p.Level, &tags); err != nil {
			return nil, err
		}
		p.TitleKo = title.String
		p.Tags = []string(tags)
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Tags(ctx context.Context) (map[int][]string, error) {
	rows, err := r.db.QueryContext(ctx, listProblemTagsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]string)
	for rows.Next() {
		var (
			id   int
			tags pq.StringArray
		)
		if err := rows.Scan(&id, &tags); err != nil {
			return nil, err
		}
		out[id] = []string(tags)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListSolves(ctx context.Context) ([]Solve, error) {
	rows, err := r.db.QueryContext(ctx, listSolvesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Solve, 0)
	for rows.Next() {
		var s Solve
		if err := rows.Scan(&s.Handle, &s.ProblemID, &s.Level); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpsertProblems(ctx context.Context, problems []Problem) error {
	if len(problems) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertProblemsQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range problems {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.TitleKo, p.Level, pq.Array(tags)); err != nil {
			return fmt.Errorf("upsert problem %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) AddSolves(ctx context.Context, solves []Solve) error {
	if len(solves) == 0 {
		return nil
	}

	handles := make([]string, len(solves))
	ids := make([]int64, len(solves))
	levels := make([]int64, len(solves))
	for i, s := range solves {
		handles[i] = s.Handle
		ids[i] = int64(s.ProblemID)
		levels[i] = int64(s.Level)
	}

	_, err := r.db.ExecContext(ctx, insertSolvesQuery, pq.Array(handles), pq.Array(ids), pq.Array(levels))
	return err
}
