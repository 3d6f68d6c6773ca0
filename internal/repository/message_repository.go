package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/social-media-api/internal/logging"
	"github.com/iliyamo/social-media-api/internal/model"
)

const messageColumns = "message_id, posted_by, message_text, time_posted_epoch"

// MessageRepo encapsulates all queries against the `message` table.
type MessageRepo struct {
	db  DBTX
	log logging.Logger
}

func NewMessageRepo(db DBTX, log logging.Logger) *MessageRepo {
	if log == nil {
		log = logging.Nop()
	}
	return &MessageRepo{db: db, log: log.With("component", "message_repo")}
}

// GetByID fetches a message by primary key, or ErrMessageNotFound.
func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	const q = "SELECT " + messageColumns + " FROM message WHERE message_id = ?"
	var m model.Message
	err := r.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.PostedBy, &m.MessageText, &m.TimePostedEpoch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fail(ctx, r.log, "get message by id", q, err)
	}
	return &m, nil
}

// GetAll returns every message in the store's natural order.
func (r *MessageRepo) GetAll(ctx context.Context) ([]model.Message, error) {
	const q = "SELECT " + messageColumns + " FROM message"
	return r.list(ctx, "list messages", q)
}

// GetByPoster returns all messages posted by accountID.
func (r *MessageRepo) GetByPoster(ctx context.Context, accountID int64) ([]model.Message, error) {
	const q = "SELECT " + messageColumns + " FROM message WHERE posted_by = ?"
	return r.list(ctx, "list messages by poster", q, accountID)
}

// Insert adds a new message and returns it with the assigned id.
func (r *MessageRepo) Insert(ctx context.Context, m model.Message) (*model.Message, error) {
	const q = "INSERT INTO message (posted_by, message_text, time_posted_epoch) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, m.PostedBy, m.MessageText, m.TimePostedEpoch)
	if err != nil {
		return nil, fail(ctx, r.log, "insert message", q, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fail(ctx, r.log, "insert message", q, err)
	}
	m.ID = id
	return &m, nil
}

// Update writes every column of m to the row with m.ID. It reports true iff
// exactly one row matched.
func (r *MessageRepo) Update(ctx context.Context, m model.Message) (bool, error) {
	const q = "UPDATE message SET posted_by = ?, message_text = ?, time_posted_epoch = ? WHERE message_id = ?"
	res, err := r.db.ExecContext(ctx, q, m.PostedBy, m.MessageText, m.TimePostedEpoch, m.ID)
	if err != nil {
		return false, fail(ctx, r.log, "update message", q, err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fail(ctx, r.log, "update message", q, err)
	}
	return ok, nil
}

// Delete removes the message with id. It reports true iff a row was removed.
func (r *MessageRepo) Delete(ctx context.Context, id int64) (bool, error) {
	const q = "DELETE FROM message WHERE message_id = ?"
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, fail(ctx, r.log, "delete message", q, err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fail(ctx, r.log, "delete message", q, err)
	}
	return ok, nil
}

func (r *MessageRepo) list(ctx context.Context, op, q string, args ...any) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fail(ctx, r.log, op, q, err)
	}
	defer rows.Close()

	out := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.PostedBy, &m.MessageText, &m.TimePostedEpoch); err != nil {
			return nil, fail(ctx, r.log, op, q, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(ctx, r.log, op, q, err)
	}
	return out, nil
}
