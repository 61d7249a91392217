package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"presence/internal/attendance/models"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
)

// numTxShards spreads (user, session) pairs over independent locks.
const numTxShards = 128

// defaultTxTimeout bounds a transaction when the caller set no deadline.
const defaultTxTimeout = 5 * time.Second

// shardedTx is the in-process StoreTx. Transactions on the same shard
// key run one at a time; writes are staged and flushed to the store only
// when fn succeeds, so a failing fn leaves nothing behind.
type shardedTx struct {
	shards  [numTxShards]sync.Mutex
	store   Store
	timeout time.Duration
}

// NewShardedTx wraps store. A zero timeout uses defaultTxTimeout.
func NewShardedTx(store Store, timeout time.Duration) StoreTx {
	return &shardedTx{store: store, timeout: timeout}
}

func (t *shardedTx) RunInTx(ctx context.Context, fn func(store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := t.selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	staged := newStagedStore(t.store)
	if err := fn(staged); err != nil {
		return err
	}
	return staged.flush(ctx)
}

func (t *shardedTx) selectShard(ctx context.Context) int {
	key, ok := ctx.Value(txKeyCtx).(string)
	if !ok || key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % numTxShards)
}

type txKey struct{}

var txKeyCtx = txKey{}

// withPairKey routes the transaction to the shard of (userID, sessionID).
func withPairKey(ctx context.Context, userID id.UserID, sessionID id.SessionID) context.Context {
	return context.WithValue(ctx, txKeyCtx, userID.String()+":"+sessionID.String())
}

// committer applies a batch of writes all-or-nothing.
type committer interface {
	Commit(ctx context.Context, writes []models.Write) error
}

// stagedStore reads through to the store, seeing its own staged records,
// and buffers writes in order.
type stagedStore struct {
	base    Store
	records map[id.AttendanceID]*models.Record
	writes  []models.Write
}

func newStagedStore(base Store) *stagedStore {
	return &stagedStore{base: base, records: make(map[id.AttendanceID]*models.Record)}
}

// flush hands the batch to the store in one Commit. Stores without Commit
// get the writes one by one.
func (s *stagedStore) flush(ctx context.Context) error {
	if len(s.writes) == 0 {
		return nil
	}
	if c, ok := s.base.(committer); ok {
		return c.Commit(ctx, s.writes)
	}
	for _, w := range s.writes {
		var err error
		switch {
		case w.Create != nil:
			err = s.base.Create(ctx, w.Create)
		case w.Update != nil:
			err = s.base.Update(ctx, w.Update)
		case w.Audit != nil:
			err = s.base.AppendAudit(ctx, w.Audit)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *stagedStore) Create(_ context.Context, record *models.Record) error {
	cp := *record
	s.records[cp.ID] = &cp
	staged := cp
	s.writes = append(s.writes, models.Write{Create: &staged})
	return nil
}

func (s *stagedStore) Update(_ context.Context, record *models.Record) error {
	cp := *record
	s.records[cp.ID] = &cp
	staged := cp
	s.writes = append(s.writes, models.Write{Update: &staged})
	return nil
}

func (s *stagedStore) AppendAudit(_ context.Context, entry *models.AuditEntry) error {
	cp := *entry
	s.writes = append(s.writes, models.Write{Audit: &cp})
	return nil
}

func (s *stagedStore) FindByID(ctx context.Context, attendanceID id.AttendanceID) (*models.Record, error) {
	if r, ok := s.records[attendanceID]; ok {
		cp := *r
		return &cp, nil
	}
	return s.base.FindByID(ctx, attendanceID)
}

func (s *stagedStore) FindByUserAndSession(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*models.Record, error) {
	var latest *models.Record
	for _, r := range s.records {
		if r.UserID == userID && r.SessionID == sessionID && (latest == nil || r.CreatedAt.After(latest.CreatedAt)) {
			latest = r
		}
	}
	if latest != nil {
		cp := *latest
		return &cp, nil
	}
	return s.base.FindByUserAndSession(ctx, userID, sessionID)
}

func (s *stagedStore) ListAudit(ctx context.Context, attendanceID id.AttendanceID) ([]*models.AuditEntry, error) {
	return s.base.ListAudit(ctx, attendanceID)
}
