// Package walletstate keeps the process-wide, memory-bounded record of what
// has already been notified for each wallet.
//
// A single Registry is built at startup and shared by reference with every
// consumer so that several observers of the same wallet dedupe against the
// same state. Every tracked value lives in its own fixed-capacity LRU keyed
// by wallet, which bounds memory regardless of how many wallets a session
// visits.
package walletstate

import (
	"slices"
	"sync"

	"github.com/gabapcia/walletsync/internal/pkg/types"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/shopspring/decimal"
)

// HashKind names one of the per-wallet notified transaction hash sets.
type HashKind string

const (
	Proposed  HashKind = "proposed"
	Ready     HashKind = "ready"
	Executed  HashKind = "executed"
	Cancelled HashKind = "cancelled"
)

// HashKinds lists every tracked hash set.
var HashKinds = []HashKind{Proposed, Ready, Executed, Cancelled}

// Registry holds the last notified values and dedup sets of every tracked
// wallet. It is safe for concurrent use.
type Registry struct {
	// mu serialises read-modify-write sequences spanning more than one LRU call
	// and guards the sets and maps stored inside them.
	mu sync.Mutex

	balances   *types.LRU[string, decimal.Decimal]
	ownersKeys *types.LRU[string, string]
	thresholds *types.LRU[string, uint64]
	modules    *types.LRU[string, map[string]bool]
	hashes     map[HashKind]*types.LRU[string, mapset.Set[string]]

	// approvals is wallet -> tx hash -> approvers. The nested map keeps one LRU
	// entry per wallet rather than one per (wallet, tx) pair.
	approvals *types.LRU[string, map[string]mapset.Set[string]]
}

// New returns a Registry whose trackers each hold at most capacity wallets.
func New(capacity int) (*Registry, error) {
	var err error
	r := &Registry{hashes: make(map[HashKind]*types.LRU[string, mapset.Set[string]], len(HashKinds))}

	if r.balances, err = types.NewLRU[string, decimal.Decimal](capacity); err != nil {
		return nil, err
	}
	if r.ownersKeys, err = types.NewLRU[string, string](capacity); err != nil {
		return nil, err
	}
	if r.thresholds, err = types.NewLRU[string, uint64](capacity); err != nil {
		return nil, err
	}
	if r.modules, err = types.NewLRU[string, map[string]bool](capacity); err != nil {
		return nil, err
	}
	if r.approvals, err = types.NewLRU[string, map[string]mapset.Set[string]](capacity); err != nil {
		return nil, err
	}
	for _, kind := range HashKinds {
		if r.hashes[kind], err = types.NewLRU[string, mapset.Set[string]](capacity); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Registry) LastBalance(wallet string) (decimal.Decimal, bool) {
	return r.balances.Get(wallet)
}

func (r *Registry) SetLastBalance(wallet string, balance decimal.Decimal) {
	r.balances.Set(wallet, balance)
}

func (r *Registry) LastOwnersKey(wallet string) (string, bool) {
	return r.ownersKeys.Get(wallet)
}

func (r *Registry) SetLastOwnersKey(wallet, key string) {
	r.ownersKeys.Set(wallet, key)
}

func (r *Registry) LastThreshold(wallet string) (uint64, bool) {
	return r.thresholds.Get(wallet)
}

func (r *Registry) SetLastThreshold(wallet string, threshold uint64) {
	r.thresholds.Set(wallet, threshold)
}

// ModuleStatus returns the last recorded enabled flag of module. found is
// false until the module has been observed once for wallet.
func (r *Registry) ModuleStatus(wallet, module string) (enabled, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	statuses, ok := r.modules.Get(wallet)
	if !ok {
		return false, false
	}

	enabled, found = statuses[module]
	return enabled, found
}

// SetModuleStatus records the enabled flag of module for wallet.
func (r *Registry) SetModuleStatus(wallet, module string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modules.Update(wallet, func(statuses map[string]bool, found bool) map[string]bool {
		if !found {
			statuses = make(map[string]bool)
		}
		statuses[module] = enabled
		return statuses
	})
}

// Observed reports whether the hash set of kind exists for wallet. The
// Proposed set is created on the first transaction observation, so its
// absence marks a cold start.
func (r *Registry) Observed(wallet string, kind HashKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.hashes[kind].Peek(wallet)
	return ok
}

// MarkHash adds hash to the set of kind and reports whether it was new.
func (r *Registry) MarkHash(wallet string, kind HashKind, hash string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.hashSetLocked(wallet, kind)
	return set.Add(hash)
}

// HasHash reports whether hash was already recorded in the set of kind.
func (r *Registry) HasHash(wallet string, kind HashKind, hash string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.hashes[kind].Get(wallet)
	return ok && set.Contains(hash)
}

// SeedHashes records hashes in the set of kind, creating it when absent.
// Seeding an empty list still creates the set.
func (r *Registry) SeedHashes(wallet string, kind HashKind, hashes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.hashSetLocked(wallet, kind)
	for _, h := range hashes {
		set.Add(h)
	}
}

// Hashes returns the sorted content of the set of kind.
func (r *Registry) Hashes(wallet string, kind HashKind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.hashes[kind].Peek(wallet)
	if !ok {
		return nil
	}

	out := set.ToSlice()
	slices.Sort(out)
	return out
}

func (r *Registry) hashSetLocked(wallet string, kind HashKind) mapset.Set[string] {
	set, ok := r.hashes[kind].Get(wallet)
	if !ok {
		set = mapset.NewThreadUnsafeSet[string]()
		r.hashes[kind].Set(wallet, set)
	}
	return set
}

// MarkApproval records approver as notified for tx and reports whether it
// was new.
func (r *Registry) MarkApproval(wallet, tx, approver string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	byTx, ok := r.approvals.Get(wallet)
	if !ok {
		byTx = make(map[string]mapset.Set[string])
		r.approvals.Set(wallet, byTx)
	}

	set, ok := byTx[tx]
	if !ok {
		set = mapset.NewThreadUnsafeSet[string]()
		byTx[tx] = set
	}

	return set.Add(approver)
}

// UnmarkApproval removes approver from the notified set of tx and reports
// whether it was present.
func (r *Registry) UnmarkApproval(wallet, tx, approver string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	byTx, ok := r.approvals.Get(wallet)
	if !ok {
		return false
	}

	set, ok := byTx[tx]
	if !ok || !set.Contains(approver) {
		return false
	}

	set.Remove(approver)
	return true
}

// Approvers returns the sorted notified approvers of tx, or nil when tx has
// never been seen.
func (r *Registry) Approvers(wallet, tx string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	byTx, ok := r.approvals.Peek(wallet)
	if !ok {
		return nil
	}

	set, ok := byTx[tx]
	if !ok {
		return nil
	}

	out := set.ToSlice()
	slices.Sort(out)
	return out
}

// ForgetTransaction drops the approver set of tx, once it left the pending
// collection.
func (r *Registry) ForgetTransaction(wallet, tx string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if byTx, ok := r.approvals.Peek(wallet); ok {
		delete(byTx, tx)
	}
}

// Forget removes every tracked value of wallet, the two-level approvals map
// included.
func (r *Registry) Forget(wallet string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.balances.Delete(wallet)
	r.ownersKeys.Delete(wallet)
	r.thresholds.Delete(wallet)
	r.modules.Delete(wallet)
	r.approvals.Delete(wallet)
	for _, kind := range HashKinds {
		r.hashes[kind].Delete(wallet)
	}
}

// Reset empties every tracker.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.balances.Purge()
	r.ownersKeys.Purge()
	r.thresholds.Purge()
	r.modules.Purge()
	r.approvals.Purge()
	for _, kind := range HashKinds {
		r.hashes[kind].Purge()
	}
}
