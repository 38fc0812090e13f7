package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/events"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/repositories"
)

type memStore struct {
	mu       sync.Mutex
	records  map[models.EntityType]map[string]models.Fields
	applyErr error
	applies  int
}

func newMemStore() *memStore {
	return &memStore{records: map[models.EntityType]map[string]models.Fields{
		models.EntityStakeholder: {},
		models.EntityProject:     {},
	}}
}

func (m *memStore) put(et models.EntityType, id string, f models.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[et][id] = f.Clone()
}

func (m *memStore) Get(_ context.Context, et models.EntityType, id string) (models.Fields, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.records[et][id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return f.Clone(), nil
}

func (m *memStore) Apply(_ context.Context, et models.EntityType, id string, fields models.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	f, ok := m.records[et][id]
	if !ok {
		return repositories.ErrNotFound
	}
	for k, v := range fields {
		f[k] = v
	}
	m.applies++
	return nil
}

func (m *memStore) List(_ context.Context, et models.EntityType) ([]string, []models.Fields, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.records[et]))
	for id := range m.records[et] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([]models.Fields, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, m.records[et][id].Clone())
	}
	return ids, rows, nil
}

func (m *memStore) Create(_ context.Context, et models.EntityType, id string, fields models.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	m.records[et][id] = fields.Clone()
	return nil
}

func (m *memStore) Delete(_ context.Context, et models.EntityType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[et][id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.records[et], id)
	return nil
}

type memLedger struct {
	mu        sync.Mutex
	edits     []*models.EditRecord
	recordErr error
	countErr  error
	listErr   error
}

func (l *memLedger) Record(_ context.Context, in models.NewEdit) (*models.EditRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.recordErr != nil {
		return nil, l.recordErr
	}
	if !models.IsValidInitialEditStatus(in.Status) {
		return nil, repositories.ErrInvalidStatus
	}
	if in.ActorID == "" {
		return nil, repositories.ErrMissingActor
	}
	e := &models.EditRecord{
		ID:            uuid.New(),
		ActorID:       in.ActorID,
		EntityType:    in.EntityType,
		EntityID:      in.EntityID,
		SubmittedAt:   time.Now().UTC(),
		EditKind:      in.EditKind,
		ChangeSummary: in.ChangeSummary.Clone(),
		Status:        in.Status,
	}
	l.edits = append(l.edits, e)
	cp := *e
	return &cp, nil
}

func (l *memLedger) find(id uuid.UUID) *models.EditRecord {
	for _, e := range l.edits {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (l *memLedger) Get(_ context.Context, id uuid.UUID) (*models.EditRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.find(id)
	if e == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (l *memLedger) ListPending(_ context.Context, et *models.EntityType) ([]models.EditRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listErr != nil {
		return nil, l.listErr
	}
	out := []models.EditRecord{}
	for i := len(l.edits) - 1; i >= 0; i-- {
		e := l.edits[i]
		if e.Status != models.EditStatusPending || (et != nil && e.EntityType != *et) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (l *memLedger) Resolve(_ context.Context, id uuid.UUID, decision, reviewerID string) (*models.EditRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.find(id)
	if e == nil {
		return nil, repositories.ErrNotFound
	}
	if e.Status != models.EditStatusPending {
		return nil, repositories.ErrAlreadyResolved
	}
	now := time.Now().UTC()
	e.Status = decision
	e.ReviewerID = &reviewerID
	e.ReviewedAt = &now
	cp := *e
	return &cp, nil
}

func (l *memLedger) CountApproved(_ context.Context, actorID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.countErr != nil {
		return 0, l.countErr
	}
	n := 0
	for _, e := range l.edits {
		if e.ActorID == actorID && e.Status == models.EditStatusApproved {
			n++
		}
	}
	return n, nil
}

func (l *memLedger) ListByEntity(_ context.Context, et models.EntityType, id string, limit int) ([]models.EditRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []models.EditRecord{}
	for i := len(l.edits) - 1; i >= 0 && len(out) < limit; i-- {
		if l.edits[i].EntityType == et && l.edits[i].EntityID == id {
			out = append(out, *l.edits[i])
		}
	}
	return out, nil
}

func (l *memLedger) ListByActor(_ context.Context, actorID string, limit int) ([]models.EditRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []models.EditRecord{}
	for i := len(l.edits) - 1; i >= 0 && len(out) < limit; i-- {
		if l.edits[i].ActorID == actorID {
			out = append(out, *l.edits[i])
		}
	}
	return out, nil
}

func (l *memLedger) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.edits)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, stream string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if stream == events.StreamModeration {
		p.events = append(p.events, e)
	}
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type countingCache struct {
	mu          sync.Mutex
	counts      map[string]int
	invalidated []string
}

func newCountingCache() *countingCache {
	return &countingCache{counts: map[string]int{}}
}

func (c *countingCache) Get(_ context.Context, actorID string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[actorID]
	return n, ok, nil
}

func (c *countingCache) Set(_ context.Context, actorID string, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[actorID] = count
	return nil
}

func (c *countingCache) Invalidate(_ context.Context, actorID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, actorID)
	c.invalidated = append(c.invalidated, actorID)
	return nil
}

type memClaims struct {
	mu     sync.Mutex
	claims []*models.OrganizationClaim
}

func (m *memClaims) Create(_ context.Context, in models.NewClaim) (*models.OrganizationClaim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &models.OrganizationClaim{
		ID:               uuid.New(),
		OrganizationID:   in.OrganizationID,
		OrganizationName: in.OrganizationName,
		ClaimantName:     in.ClaimantName,
		ClaimantEmail:    in.ClaimantEmail,
		SubmittedAt:      time.Now().UTC(),
		Status:           models.ClaimStatusPending,
	}
	if in.ClaimantUserID != "" {
		uid := in.ClaimantUserID
		c.ClaimantUserID = &uid
	}
	m.claims = append(m.claims, c)
	cp := *c
	return &cp, nil
}

func (m *memClaims) find(id uuid.UUID) *models.OrganizationClaim {
	for _, c := range m.claims {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (m *memClaims) Get(_ context.Context, id uuid.UUID) (*models.OrganizationClaim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.find(id)
	if c == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memClaims) List(_ context.Context, status string) ([]models.OrganizationClaim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.OrganizationClaim{}
	for i := len(m.claims) - 1; i >= 0; i-- {
		if status == "" || m.claims[i].Status == status {
			out = append(out, *m.claims[i])
		}
	}
	return out, nil
}

func (m *memClaims) Resolve(_ context.Context, id uuid.UUID, decision, reviewer string) (*models.OrganizationClaim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.find(id)
	if c == nil {
		return nil, repositories.ErrNotFound
	}
	if !c.IsPending() {
		return nil, repositories.ErrAlreadyResolved
	}
	now := time.Now().UTC()
	c.Status = decision
	c.ReviewedBy = &reviewer
	c.ReviewedAt = &now
	cp := *c
	return &cp, nil
}

func (m *memClaims) HasApproved(_ context.Context, organizationID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.claims {
		if c.OrganizationID == organizationID && c.Status == models.ClaimStatusApproved {
			return true, nil
		}
	}
	return false, nil
}

type memTaxonomy struct {
	mu    sync.Mutex
	items map[string][]string
	err   error
}

func (m *memTaxonomy) Get(_ context.Context, typ string) ([]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	items, ok := m.items[typ]
	return items, ok, nil
}

func (m *memTaxonomy) Set(_ context.Context, typ string, items []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.items == nil {
		m.items = map[string][]string{}
	}
	m.items[typ] = append([]string{}, items...)
	return nil
}
