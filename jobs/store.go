package jobs

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Store persists Job records. Mirrors media.SQLRepository's raw
// database/sql + lib/pq access pattern.
type Store interface {
	Create(j *Job) error
	Get(id string) (*Job, error)
	Update(j *Job) error
}

type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) Create(j *Job) error {
	const stmt = `insert into "jobs" (
		"id", "kind", "input", "status", "attempts", "max_retries",
		"created_at", "updated_at"
	) values ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.DB.Exec(stmt,
		j.ID, j.Kind, []byte(j.Input), string(j.Status), j.Attempts, j.MaxRetries,
		j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting job row: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(id string) (*Job, error) {
	const stmt = `select
		"id", "kind", "input", "output", "status", "attempts",
		"max_retries", "error", "created_at", "updated_at"
		from "jobs" where "id" = $1`
	row := s.DB.QueryRow(stmt, id)

	var j Job
	var status string
	var output sql.NullString
	var jobErr sql.NullString
	if err := row.Scan(
		&j.ID, &j.Kind, &j.Input, &output, &status, &j.Attempts,
		&j.MaxRetries, &jobErr, &j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("job %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("scanning job row: %w", err)
	}
	j.Status = Status(status)
	j.Output = []byte(output.String)
	j.Error = jobErr.String
	return &j, nil
}

func (s *SQLStore) Update(j *Job) error {
	const stmt = `update "jobs" set
		"output" = $1, "status" = $2, "attempts" = $3, "error" = $4, "updated_at" = $5
		where "id" = $6`
	_, err := s.DB.Exec(stmt, []byte(j.Output), string(j.Status), j.Attempts, j.Error, j.UpdatedAt, j.ID)
	if err != nil {
		return fmt.Errorf("updating job row %s: %w", j.ID, err)
	}
	return nil
}
