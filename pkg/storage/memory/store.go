// Package memory implements the Storage interface in process memory. Every
// conditional write of the DynamoDB backend is mirrored here under a single
// store mutex, so services behave identically against both backends.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/google/uuid"
)

type memberKey struct{ poolID, userID string }

// Store is an in-memory Storage implementation.
type Store struct {
	mu           sync.Mutex
	pools        map[string]*models.Pool
	members      map[memberKey]*models.Member
	proofs       map[string]*models.Proof
	reviews      map[string]*models.ProofReview
	daily        map[string]map[string]int
	lifelines    map[memberKey]*models.LifelineAccount
	transactions map[string]*models.Transaction
	txOrder      []string
	profiles     map[string]*models.Profile
	events       map[string][]models.LedgerEvent
	connections  map[string]string
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		pools:        make(map[string]*models.Pool),
		members:      make(map[memberKey]*models.Member),
		proofs:       make(map[string]*models.Proof),
		reviews:      make(map[string]*models.ProofReview),
		daily:        make(map[string]map[string]int),
		lifelines:    make(map[memberKey]*models.LifelineAccount),
		transactions: make(map[string]*models.Transaction),
		profiles:     make(map[string]*models.Profile),
		events:       make(map[string][]models.LedgerEvent),
		connections:  make(map[string]string),
	}
}

// Make sure we conform to the interfaces
var (
	_ storage.Storage         = (*Store)(nil)
	_ storage.ConnectionStore = (*Store)(nil)
)

func copyPool(p *models.Pool) *models.Pool {
	c := *p
	if p.StartedAt != nil {
		t := *p.StartedAt
		c.StartedAt = &t
	}
	if p.EndsAt != nil {
		t := *p.EndsAt
		c.EndsAt = &t
	}
	if p.SettledAt != nil {
		t := *p.SettledAt
		c.SettledAt = &t
	}
	return &c
}

func copyMember(m *models.Member) *models.Member {
	c := *m
	c.ProofDays = slices.Clone(m.ProofDays)
	c.CoveredDays = slices.Clone(m.CoveredDays)
	return &c
}

func copyProof(p *models.Proof) *models.Proof {
	c := *p
	c.Flags = slices.Clone(p.Flags)
	return &c
}

func (s *Store) appendEvent(ev *models.LedgerEvent) {
	if ev == nil {
		return
	}
	e := *ev
	if e.EventId == "" {
		e.EventId = uuid.New().String()
	}
	s.events[e.PoolId] = append(s.events[e.PoolId], e)
}

// --- pools ---

func (s *Store) CreatePool(ctx context.Context, pool *models.Pool, creator *models.Member, deposit *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pools[pool.Id]; ok {
		return fmt.Errorf("pool with ID %s already exists", pool.Id)
	}
	if deposit != nil {
		if _, ok := s.transactions[deposit.Id]; ok {
			return storage.ErrDuplicateTransaction
		}
		s.putTransaction(deposit)
	}
	s.pools[pool.Id] = copyPool(pool)
	s.members[memberKey{pool.Id, creator.UserId}] = copyMember(creator)
	s.appendEvent(&models.LedgerEvent{PoolId: pool.Id, Kind: models.EventPoolCreated, UserId: pool.CreatorId, Timestamp: pool.CreatedAt})
	s.appendEvent(&models.LedgerEvent{PoolId: pool.Id, Kind: models.EventMemberJoined, UserId: creator.UserId, Amount: creator.StakeAmount, Timestamp: creator.JoinedAt})
	return nil
}

func (s *Store) GetPool(ctx context.Context, poolID string) (*models.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("pool with ID %s: %w", poolID, storage.ErrNotFound)
	}
	return copyPool(p), nil
}

func (s *Store) ListPools(ctx context.Context, status models.PoolStatus) ([]models.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pools := make([]models.Pool, 0, len(s.pools))
	for _, p := range s.pools {
		if status != "" && p.Status != status {
			continue
		}
		pools = append(pools, *copyPool(p))
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].CreatedAt.Before(pools[j].CreatedAt) })
	return pools, nil
}

func (s *Store) ListPoolEvents(ctx context.Context, poolID string) ([]models.LedgerEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events[poolID]), nil
}

func (s *Store) AddMember(ctx context.Context, join *storage.JoinWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[join.Pool.Id]
	if !ok {
		return fmt.Errorf("pool with ID %s: %w", join.Pool.Id, storage.ErrNotFound)
	}
	key := memberKey{join.Pool.Id, join.Member.UserId}
	if _, exists := s.members[key]; exists {
		return storage.ErrAlreadyMember
	}
	if p.Version != join.Pool.Version || p.CurrentPlayers >= p.MaxPlayers || !p.Status.Joinable() {
		return storage.ErrVersionConflict
	}
	if join.Deposit != nil {
		if _, dup := s.transactions[join.Deposit.Id]; dup {
			return storage.ErrDuplicateTransaction
		}
		s.putTransaction(join.Deposit)
	}

	p.CurrentPlayers++
	p.PotSize += join.Member.StakeAmount
	p.Version++
	if join.Activate && p.Status == models.PoolWaiting {
		at, ends := join.At, join.EndsAt
		p.Status = models.PoolActive
		p.StartedAt = &at
		p.EndsAt = &ends
	}
	s.members[key] = copyMember(join.Member)
	s.appendEvent(&models.LedgerEvent{PoolId: p.Id, Kind: models.EventMemberJoined, UserId: join.Member.UserId, Amount: join.Member.StakeAmount, Timestamp: join.At})
	if join.Activate {
		s.appendEvent(&models.LedgerEvent{PoolId: p.Id, Kind: models.EventPoolActivated, Timestamp: join.At})
	}
	return nil
}

func (s *Store) TransitionPool(ctx context.Context, poolID string, from []models.PoolStatus, to models.PoolStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[poolID]
	if !ok {
		return fmt.Errorf("pool with ID %s: %w", poolID, storage.ErrNotFound)
	}
	if !slices.Contains(from, p.Status) {
		return storage.ErrInvalidTransition
	}
	p.Status = to
	p.Version++
	if to == models.PoolCancelled {
		s.appendEvent(&models.LedgerEvent{PoolId: poolID, Kind: models.EventPoolCancelled, Timestamp: at})
	}
	return nil
}

func (s *Store) SetPoolCounters(ctx context.Context, poolID string, players int, pot int64, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[poolID]
	if !ok {
		return fmt.Errorf("pool with ID %s: %w", poolID, storage.ErrNotFound)
	}
	if p.Version != version {
		return storage.ErrVersionConflict
	}
	p.CurrentPlayers = players
	p.PotSize = pot
	p.Version++
	return nil
}

// --- members ---

func (s *Store) GetMember(ctx context.Context, poolID, userID string) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[memberKey{poolID, userID}]
	if !ok {
		return nil, fmt.Errorf("member %s of pool %s: %w", userID, poolID, storage.ErrNotFound)
	}
	return copyMember(m), nil
}

func (s *Store) ListMembers(ctx context.Context, poolID string) ([]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var members []models.Member
	for k, m := range s.members {
		if k.poolID == poolID {
			members = append(members, *copyMember(m))
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (s *Store) ListMembershipsByUser(ctx context.Context, userID string) ([]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var members []models.Member
	for k, m := range s.members {
		if k.userID == userID {
			members = append(members, *copyMember(m))
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (s *Store) UpdateMember(ctx context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateMemberLocked(m)
}

func (s *Store) updateMemberLocked(m *models.Member) error {
	key := memberKey{m.PoolId, m.UserId}
	cur, ok := s.members[key]
	if !ok {
		return fmt.Errorf("member %s of pool %s: %w", m.UserId, m.PoolId, storage.ErrNotFound)
	}
	if cur.Version != m.Version {
		return storage.ErrVersionConflict
	}
	m.Version++
	s.members[key] = copyMember(m)
	return nil
}

// --- proofs ---

func (s *Store) CreateProof(ctx context.Context, proof *models.Proof) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.proofs[proof.Id]; ok {
		return fmt.Errorf("proof with ID %s already exists", proof.Id)
	}
	s.proofs[proof.Id] = copyProof(proof)
	return nil
}

func (s *Store) GetProof(ctx context.Context, proofID string) (*models.Proof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proofs[proofID]
	if !ok {
		return nil, fmt.Errorf("proof with ID %s: %w", proofID, storage.ErrNotFound)
	}
	return copyProof(p), nil
}

func (s *Store) ListProofsByMember(ctx context.Context, poolID, userID string) ([]models.Proof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var proofs []models.Proof
	for _, p := range s.proofs {
		if p.PoolId == poolID && p.UserId == userID {
			proofs = append(proofs, *copyProof(p))
		}
	}
	sort.Slice(proofs, func(i, j int) bool { return proofs[i].SubmittedAt.Before(proofs[j].SubmittedAt) })
	return proofs, nil
}

func (s *Store) ResolveProof(ctx context.Context, proofID string, from []models.ProofStatus, verdict models.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proofs[proofID]
	if !ok {
		return fmt.Errorf("proof with ID %s: %w", proofID, storage.ErrNotFound)
	}
	if !slices.Contains(from, p.Status) {
		return storage.ErrProofAlreadyResolved
	}
	p.Status = verdict.Status
	p.AiConfidence = verdict.Confidence
	p.AiReasoning = verdict.Reasoning
	p.Flags = slices.Clone(verdict.Flags)
	p.Degraded = verdict.Degraded
	if verdict.Status.Terminal() {
		at := verdict.At
		p.ResolvedAt = &at
	}
	return nil
}

// --- reviews ---

func (s *Store) CreateReview(ctx context.Context, review *models.ProofReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[review.Id]; ok {
		return fmt.Errorf("review with ID %s: %w", review.Id, storage.ErrReviewExists)
	}
	r := *review
	s.reviews[review.Id] = &r
	return nil
}

func (s *Store) GetReview(ctx context.Context, reviewID string) (*models.ProofReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[reviewID]
	if !ok {
		return nil, fmt.Errorf("review with ID %s: %w", reviewID, storage.ErrNotFound)
	}
	c := *r
	return &c, nil
}

func (s *Store) pendingReviews(match func(*models.ProofReview) bool) []models.ProofReview {
	var out []models.ProofReview
	for _, r := range s.reviews {
		if r.Status == models.ReviewPending && match(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) ListPendingReviewsByReviewer(ctx context.Context, reviewerID string) ([]models.ProofReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingReviews(func(r *models.ProofReview) bool { return r.ReviewerId == reviewerID }), nil
}

func (s *Store) ListPendingReviewsByPool(ctx context.Context, poolID string) ([]models.ProofReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingReviews(func(r *models.ProofReview) bool { return r.PoolId == poolID }), nil
}

func (s *Store) GetStaleReviews(ctx context.Context, cutoff time.Time) ([]models.ProofReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pendingReviews(func(r *models.ProofReview) bool { return r.CreatedAt.Before(cutoff) }), nil
}

func (s *Store) ResolveReview(ctx context.Context, reviewID string, status models.ReviewStatus, note, resolvedBy string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[reviewID]
	if !ok {
		return fmt.Errorf("review with ID %s: %w", reviewID, storage.ErrNotFound)
	}
	if r.Status != models.ReviewPending {
		return storage.ErrReviewResolved
	}
	r.Status = status
	r.Note = note
	r.ResolvedBy = resolvedBy
	r.ResolvedAt = &at
	return nil
}

// --- daily habit records ---

func (s *Store) IncrementDailyRecord(ctx context.Context, userID, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.daily[userID] == nil {
		s.daily[userID] = make(map[string]int)
	}
	s.daily[userID][day]++
	return nil
}

func (s *Store) ListDailyRecords(ctx context.Context, userID string) ([]models.DailyHabitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]models.DailyHabitRecord, 0, len(s.daily[userID]))
	for day, n := range s.daily[userID] {
		records = append(records, models.DailyHabitRecord{UserId: userID, Day: day, ProofCount: n})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Day < records[j].Day })
	return records, nil
}
