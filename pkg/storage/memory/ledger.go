package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
)

// --- lifelines ---

func (s *Store) account(userID, poolID string) *models.LifelineAccount {
	key := memberKey{poolID, userID}
	acct, ok := s.lifelines[key]
	if !ok {
		acct = &models.LifelineAccount{UserId: userID, PoolId: poolID}
		s.lifelines[key] = acct
	}
	return acct
}

func (s *Store) GetLifelineAccount(ctx context.Context, userID, poolID string) (*models.LifelineAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.lifelines[memberKey{poolID, userID}]
	if !ok {
		return &models.LifelineAccount{UserId: userID, PoolId: poolID}, nil
	}
	c := *acct
	c.CoveredDays = slices.Clone(acct.CoveredDays)
	return &c, nil
}

func (s *Store) PurchaseLifeline(ctx context.Context, userID, poolID string, tx *models.Transaction, event *models.LedgerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok || profile.Balance < tx.Amount {
		return storage.ErrInsufficientBalance
	}
	acct := s.account(userID, poolID)
	if acct.Obtained() >= models.LifelineCap {
		return storage.ErrLifelineCapReached
	}
	if _, dup := s.transactions[tx.Id]; dup {
		return storage.ErrDuplicateTransaction
	}
	profile.Balance -= tx.Amount
	profile.Version++
	acct.Purchased++
	s.putTransaction(tx)
	s.appendEvent(event)
	return nil
}

func (s *Store) EarnLifeline(ctx context.Context, userID, poolID string, event *models.LedgerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.account(userID, poolID)
	if acct.Obtained() >= models.LifelineCap {
		return storage.ErrLifelineCapReached
	}
	acct.Earned++
	s.appendEvent(event)
	return nil
}

func (s *Store) UseLifeline(ctx context.Context, member *models.Member, day string, event *models.LedgerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.account(member.UserId, member.PoolId)
	if acct.Available() <= 0 || slices.Contains(acct.CoveredDays, day) {
		return storage.ErrNoLifelines
	}
	if err := s.updateMemberLocked(member); err != nil {
		return err
	}
	acct.Used++
	acct.CoveredDays = append(acct.CoveredDays, day)
	s.appendEvent(event)
	return nil
}

// --- transactions ---

func (s *Store) putTransaction(tx *models.Transaction) {
	c := *tx
	s.transactions[tx.Id] = &c
	s.txOrder = append(s.txOrder, tx.Id)
}

func (s *Store) RecordTransaction(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.Id]; ok {
		return storage.ErrDuplicateTransaction
	}
	s.putTransaction(tx)
	return nil
}

func (s *Store) listTransactions(match func(*models.Transaction) bool) []models.Transaction {
	var out []models.Transaction
	for _, id := range s.txOrder {
		if tx := s.transactions[id]; match(tx) {
			out = append(out, *tx)
		}
	}
	return out
}

func (s *Store) ListTransactionsByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listTransactions(func(tx *models.Transaction) bool { return tx.UserId == userID }), nil
}

func (s *Store) ListTransactionsByPool(ctx context.Context, poolID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listTransactions(func(tx *models.Transaction) bool { return tx.PoolId == poolID }), nil
}

// --- profiles ---

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile for user ID %s: %w", userID, storage.ErrNotFound)
	}
	c := *p
	return &c, nil
}

func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profile.UserId]; ok {
		return storage.ErrProfileExists
	}
	c := *profile
	s.profiles[profile.UserId] = &c
	return nil
}

func (s *Store) CreditProfile(ctx context.Context, credit storage.ProfileCredit) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[credit.Tx.Id]; ok {
		return false, nil
	}
	p, ok := s.profiles[credit.Tx.UserId]
	if !ok {
		p = &models.Profile{UserId: credit.Tx.UserId, CreatedAt: credit.Tx.CreatedAt}
		s.profiles[credit.Tx.UserId] = p
	}
	p.Balance += credit.Tx.Amount
	p.TotalSolEarned += credit.Earned
	if credit.PoolWon {
		p.TotalPoolsWon++
	}
	p.Version++
	s.putTransaction(credit.Tx)
	return true, nil
}

// --- settlement ---

func (s *Store) AcquireSettlementLease(ctx context.Context, poolID string, now time.Time, lease time.Duration) (*models.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("pool with ID %s: %w", poolID, storage.ErrNotFound)
	}
	switch {
	case p.SettledAt != nil:
		return nil, storage.ErrAlreadySettled
	case p.Status != models.PoolActive && p.Status != models.PoolSettling:
		return nil, storage.ErrPoolNotSettleable
	case p.SettlementLeaseUntil > now.Unix():
		return nil, storage.ErrSettlementInProgress
	}
	p.Status = models.PoolSettling
	p.SettlementLeaseUntil = now.Add(lease).Unix()
	p.Version++
	return copyPool(p), nil
}

func (s *Store) MarkSettled(ctx context.Context, poolID string, at time.Time, event *models.LedgerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[poolID]
	if !ok {
		return fmt.Errorf("pool with ID %s: %w", poolID, storage.ErrNotFound)
	}
	if p.SettledAt != nil {
		return storage.ErrAlreadySettled
	}
	p.Status = models.PoolCompleted
	p.SettledAt = &at
	p.SettlementLeaseUntil = 0
	p.Version++
	s.appendEvent(event)
	return nil
}

// --- websocket connections ---

func (s *Store) AddConnection(ctx context.Context, connectionID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[connectionID] = userID
	return nil
}

func (s *Store) RemoveConnection(ctx context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, connectionID)
	return nil
}

func (s *Store) GetConnectionsByUser(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, u := range s.connections {
		if u == userID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
