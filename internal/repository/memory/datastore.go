package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/repository/contract"
	"biomeai-be/pkg/embedding"

	"github.com/google/uuid"
)

// Datastore is an in-process contract.Datastore. Every operation holds one
// mutex, so multi-step writes are atomic. Values are copied in and out.
type Datastore struct {
	mu       sync.Mutex
	users    map[string]entity.User
	reports  map[uuid.UUID]*entity.Report
	byThread map[string]uuid.UUID
	chunks   map[uuid.UUID][]*entity.ReportChunk
	messages map[uuid.UUID][]*entity.Message
	ids      map[string]struct{}
	seq      int64
}

var _ contract.Datastore = (*Datastore)(nil)

func NewDatastore() *Datastore {
	return &Datastore{
		users:    make(map[string]entity.User),
		reports:  make(map[uuid.UUID]*entity.Report),
		byThread: make(map[string]uuid.UUID),
		chunks:   make(map[uuid.UUID][]*entity.ReportChunk),
		messages: make(map[uuid.UUID][]*entity.Message),
		ids:      make(map[string]struct{}),
	}
}

func (d *Datastore) UpsertUser(ctx context.Context, user *entity.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	existing, ok := d.users[user.Id]
	if !ok {
		existing = entity.User{Id: user.Id, CreatedAt: now}
	}
	existing.Username = user.Username
	existing.UpdatedAt = &now
	d.users[user.Id] = existing

	*user = existing
	return nil
}

func (d *Datastore) FindReportByThreadId(ctx context.Context, threadId string) (*entity.Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.byThread[threadId]
	if !ok {
		return nil, nil
	}
	return copyReport(d.reports[id]), nil
}

func (d *Datastore) ReplaceReport(ctx context.Context, report *entity.Report, chunks []*entity.ReportChunk) (*uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var purged *uuid.UUID
	if existingId, ok := d.byThread[report.ThreadId]; ok {
		if d.reports[existingId].UserId != report.UserId {
			return nil, contract.ErrThreadOwnedByAnotherUser
		}
		d.purgeLocked(existingId)
		purged = &existingId
	}

	if report.Id == uuid.Nil {
		report.Id = uuid.New()
	}
	report.CreatedAt = time.Now()

	stored := copyReport(report)
	d.reports[stored.Id] = stored
	d.byThread[stored.ThreadId] = stored.Id

	copied := make([]*entity.ReportChunk, 0, len(chunks))
	for _, c := range chunks {
		c.ReportId = report.Id
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		c.CreatedAt = report.CreatedAt
		cc := *c
		copied = append(copied, &cc)
	}
	sort.Slice(copied, func(i, j int) bool { return copied[i].ChunkIndex < copied[j].ChunkIndex })
	d.chunks[report.Id] = copied

	return purged, nil
}

func (d *Datastore) PurgeReport(ctx context.Context, reportId uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.reports[reportId]; !ok {
		return contract.ErrReportNotFound
	}
	d.purgeLocked(reportId)
	return nil
}

func (d *Datastore) purgeLocked(reportId uuid.UUID) {
	for _, m := range d.messages[reportId] {
		delete(d.ids, m.Id)
	}
	delete(d.messages, reportId)
	delete(d.chunks, reportId)
	if r, ok := d.reports[reportId]; ok {
		delete(d.byThread, r.ThreadId)
	}
	delete(d.reports, reportId)
}

func (d *Datastore) UpdateReportProgress(ctx context.Context, report *entity.Report) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored, ok := d.reports[report.Id]
	if !ok {
		return contract.ErrReportNotFound
	}
	now := time.Now()
	stored.Stage = report.Stage
	stored.Metadata = copyMetadata(report.Metadata)
	stored.UpdatedAt = &now
	return nil
}

func (d *Datastore) FindChunksByIndex(ctx context.Context, reportId uuid.UUID, limit int) ([]*entity.ReportChunk, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	all := d.chunks[reportId]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return copyChunks(all), nil
}

func (d *Datastore) SearchChunks(ctx context.Context, reportId uuid.UUID, vector []float32, limit int) ([]*entity.ReportChunk, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	type scored struct {
		chunk    *entity.ReportChunk
		distance float64
	}
	var candidates []scored
	for _, c := range d.chunks[reportId] {
		if len(c.Embedding) == 0 {
			continue
		}
		if len(c.Embedding) != len(vector) {
			return nil, fmt.Errorf("dimension mismatch: chunk %d has %d, query has %d", c.ChunkIndex, len(c.Embedding), len(vector))
		}
		candidates = append(candidates, scored{chunk: c, distance: embedding.CosineDistance(c.Embedding, vector)})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].distance < candidates[j].distance })
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]*entity.ReportChunk, len(candidates))
	for i, c := range candidates {
		cc := *c.chunk
		out[i] = &cc
	}
	return out, nil
}

func (d *Datastore) SupportsVectorSearch(ctx context.Context) bool {
	return true
}

func (d *Datastore) AppendMessage(ctx context.Context, message *entity.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.reports[message.ReportId]; !ok {
		return contract.ErrReportNotFound
	}
	if _, dup := d.ids[message.Id]; dup {
		return fmt.Errorf("message %s already exists", message.Id)
	}

	d.seq++
	message.Sequence = d.seq
	message.CreatedAt = time.Now()

	stored := *message
	stored.RetrievedChunkIds = append([]string(nil), message.RetrievedChunkIds...)
	d.messages[message.ReportId] = append(d.messages[message.ReportId], &stored)
	d.ids[message.Id] = struct{}{}
	return nil
}

func (d *Datastore) FindMessages(ctx context.Context, reportId uuid.UUID) ([]*entity.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := d.messages[reportId]
	out := make([]*entity.Message, len(stored))
	for i, m := range stored {
		mm := *m
		out[i] = &mm
	}
	return out, nil
}

func (d *Datastore) UsageStats(ctx context.Context) (*entity.UsageStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := &entity.UsageStats{
		Users:   int64(len(d.users)),
		Reports: int64(len(d.reports)),
	}
	for _, msgs := range d.messages {
		stats.Messages += int64(len(msgs))
		for _, m := range msgs {
			stats.TotalCostUsd += m.CostUsd
		}
	}
	return stats, nil
}

// ChunkCount and MessageCount expose raw sizes, including rows a purge should have removed.
func (d *Datastore) ChunkCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, c := range d.chunks {
		n += len(c)
	}
	return n
}

func (d *Datastore) MessageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.ids)
}

func copyReport(r *entity.Report) *entity.Report {
	if r == nil {
		return nil
	}
	c := *r
	c.Metadata = copyMetadata(r.Metadata)
	return &c
}

func copyMetadata(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyChunks(chunks []*entity.ReportChunk) []*entity.ReportChunk {
	out := make([]*entity.ReportChunk, len(chunks))
	for i, c := range chunks {
		cc := *c
		out[i] = &cc
	}
	return out
}
