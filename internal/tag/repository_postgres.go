package tag

import (
	"database/sql"

	"github.com/lib/pq"
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

const (
	listTagsQuery = `
		SELECT en_short, en, ko, ord
		FROM tags
		ORDER BY COALESCE(ord, 0) DESC, en_short
		LIMIT $1
	`
	upsertTagsQuery = `
		INSERT INTO tags (en_short, en, ko, ord)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::int[])
		ON CONFLICT (en_short) DO UPDATE
		SET en = EXCLUDED.en, ko = EXCLUDED.ko, ord = EXCLUDED.ord
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns tag rows ordered by ord. When the table is missing the
// result is an empty slice.
func (r *PostgresRepository) List(limit int) ([]Tag, error) {
	rows, err := r.db.Query(listTagsQuery, limit)
	if err != nil {
		return []Tag{}, nil
	}
	defer rows.Close()

	out := make([]Tag, 0)
	for rows.Next() {
		var (
			t   Tag
			en  sql.NullString
			ko  sql.NullString
			ord sql.NullInt64
		)
		if err := rows.Scan(&t.EnShort, &en, &ko, &ord); err != nil {
			continue
		}
		t.En = en.String
		t.Ko = ko.String
		t.Ord = int(ord.Int64)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Upsert(tags []Tag) error {
	if len(tags) == 0 {
		return nil
	}
	shorts := make([]string, 0, len(tags))
	ens := make([]string, 0, len(tags))
	kos := make([]string, 0, len(tags))
	ords := make([]int64, 0, len(tags))
	for _, t := range tags {
		if t.EnShort == "" {
			continue
		}
		shorts = append(shorts, t.EnShort)
		ens = append(ens, t.En)
		kos = append(kos, t.Ko)
		ords = append(ords, int64(t.Ord))
	}
	_, err := r.db.Exec(upsertTagsQuery, pq.Array(shorts), pq.Array(ens), pq.Array(kos), pq.Array(ords))
	return err
}
