// Package archive persists finished research jobs to SQLite so reports
// survive process restarts and in-memory eviction.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/scopify/benchmark-agent/internal/model"
)

// Archive writes terminal jobs to a SQLite database.
type Archive struct {
	db *sql.DB
}

// New opens a SQLite database at the given path and configures WAL mode.
func New(dsn string) (*Archive, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "archive: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "archive: exec %s", pragma)
		}
	}
	return &Archive{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS jobs (
	id              TEXT PRIMARY KEY,
	company         TEXT NOT NULL,
	status          TEXT NOT NULL,
	report          TEXT,
	error           TEXT,
	reference_names TEXT,
	reference_info  TEXT,
	created_at      DATETIME NOT NULL,
	finished_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
`

func (a *Archive) Migrate(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "archive: migrate")
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Save upserts a terminal job. Non-terminal jobs are rejected so partial
// progress never shadows a finished record.
func (a *Archive) Save(ctx context.Context, job *model.Job) error {
	if !job.Status.Terminal() {
		return eris.Errorf("archive: job %s not terminal (%s)", job.ID, job.Status)
	}

	refsJSON, err := json.Marshal(job.References)
	if err != nil {
		return eris.Wrap(err, "archive: marshal references")
	}
	infoJSON, err := json.Marshal(job.ReferenceInfo)
	if err != nil {
		return eris.Wrap(err, "archive: marshal reference info")
	}

	_, err = a.db.ExecContext(ctx,
		`INSERT INTO jobs (id, company, status, report, error, reference_names, reference_info, created_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status = excluded.status,
		   report = excluded.report,
		   error = excluded.error,
		   reference_names = excluded.reference_names,
		   reference_info = excluded.reference_info,
		   finished_at = excluded.finished_at`,
		job.ID, job.Company, string(job.Status), job.Report, job.Error,
		string(refsJSON), string(infoJSON), job.CreatedAt.UTC(), time.Now().UTC(),
	)
	return eris.Wrapf(err, "archive: save job %s", job.ID)
}

// Get returns an archived job, or (nil, nil) when no record exists.
func (a *Archive) Get(ctx context.Context, jobID string) (*model.Job, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, company, status, report, error, reference_names, reference_info, created_at, finished_at
		 FROM jobs WHERE id = ?`,
		jobID,
	)

	var (
		job        model.Job
		status     string
		report     sql.NullString
		errMsg     sql.NullString
		refsJSON   sql.NullString
		infoJSON   sql.NullString
		finishedAt time.Time
	)
	err := row.Scan(&job.ID, &job.Company, &status, &report, &errMsg,
		&refsJSON, &infoJSON, &job.CreatedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "archive: get job %s", jobID)
	}

	job.Status = model.JobStatus(status)
	job.Report = report.String
	job.Error = errMsg.String
	job.LastUpdate = finishedAt
	job.Progress = 100
	if refsJSON.Valid && refsJSON.String != "" {
		if err := json.Unmarshal([]byte(refsJSON.String), &job.References); err != nil {
			return nil, eris.Wrapf(err, "archive: unmarshal references for %s", jobID)
		}
	}
	if infoJSON.Valid && infoJSON.String != "" {
		if err := json.Unmarshal([]byte(infoJSON.String), &job.ReferenceInfo); err != nil {
			return nil, eris.Wrapf(err, "archive: unmarshal reference info for %s", jobID)
		}
	}
	return &job, nil
}

// List returns archived jobs for a company, newest first.
func (a *Archive) List(ctx context.Context, company string, limit int) ([]model.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, company, status, created_at FROM jobs WHERE 1=1`
	var args []any
	if company != "" {
		query += ` AND company = ?`
		args = append(args, company)
	}
	query += ` ORDER BY finished_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "archive: list jobs")
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var (
			job    model.Job
			status string
		)
		if err := rows.Scan(&job.ID, &job.Company, &status, &job.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "archive: scan job")
		}
		job.Status = model.JobStatus(status)
		jobs = append(jobs, job)
	}
	return jobs, eris.Wrap(rows.Err(), "archive: list jobs iterate")
}
