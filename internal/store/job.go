package store

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/shelfdesk/shelfdesk/internal/model"
)

const jobColumns = "id, type, bid, call_number, copy_no, status, message, created_ts, updated_ts"

func (s *Store) AddJob(ctx context.Context, job *model.Job) (*model.Job, error) {
	stmt := `
		INSERT INTO job (type, bid, call_number, copy_no, status, message)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING ` + jobColumns

	status := job.Status
	if status == "" {
		status = model.JobStatusPending
	}
	var j model.Job
	if err := s.write(ctx, "add job", func(ext sqlx.ExtContext) error {
		args := []any{job.Type, job.BID, job.CallNumber, job.CopyNo, status, job.Message}
		traceQuery(stmt, args)
		return sqlx.GetContext(ctx, ext, &j, stmt, args...)
	}); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) GetJob(ctx context.Context, id int64) (*model.Job, error) {
	var j model.Job
	if err := s.get(ctx, &j, "SELECT "+jobColumns+" FROM job WHERE id = ?", id); err != nil {
		return nil, readErr(err, "job %d", id)
	}
	return &j, nil
}

func (s *Store) ListJobs(ctx context.Context, find *model.FindJob) ([]*model.Job, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Type; v != nil {
		where, args = append(where, "type = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}

	query := "SELECT " + jobColumns + " FROM job WHERE " + strings.Join(where, " AND ") + " ORDER BY id"
	list := make([]*model.Job, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "jobs")
	}
	return list, nil
}

func (s *Store) UpdateJob(ctx context.Context, update *model.UpdateJob) (*model.Job, error) {
	set, args := []string{"updated_ts = strftime('%s', 'now')"}, []any{}
	if v := update.Status; v != nil {
		set, args = append(set, "status = ?"), append(args, *v)
	}
	if v := update.Message; v != nil {
		set, args = append(set, "message = ?"), append(args, *v)
	}
	args = append(args, update.ID)

	stmt := "UPDATE job SET " + strings.Join(set, ", ") + " WHERE id = ? RETURNING " + jobColumns
	var j model.Job
	if err := s.write(ctx, "update job", func(ext sqlx.ExtContext) error {
		traceQuery(stmt, args)
		if err := sqlx.GetContext(ctx, ext, &j, stmt, args...); err != nil {
			return readErr(err, "job %d", update.ID)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) DeleteJob(ctx context.Context, id int64) error {
	return s.write(ctx, "delete job", func(ext sqlx.ExtContext) error {
		return execAffecting(ctx, ext, "job", "DELETE FROM job WHERE id = ?", id)
	})
}
