package notify

import (
	"slices"
	"strings"
	"time"

	"github.com/gabapcia/walletsync/internal/txmerge"
	"github.com/gabapcia/walletsync/internal/walletstate"

	mapset "github.com/deckarep/golang-set/v2"
)

// Detector diffs successive observations of a wallet and returns the
// notifications that have not fired yet. Dedup state lives in the shared
// walletstate.Registry, so repeated passes over the same observation, from
// the realtime path or the poller, fire nothing new.
type Detector struct {
	registry     *walletstate.Registry
	localAccount string
	now          func() time.Time
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithLocalAccount sets the connected account. Approvals added or revoked by
// it are recorded silently.
func WithLocalAccount(address string) DetectorOption {
	return func(d *Detector) {
		d.localAccount = strings.ToLower(address)
	}
}

// WithClock overrides the time source used for OccurredAt.
func WithClock(now func() time.Time) DetectorOption {
	return func(d *Detector) {
		d.now = now
	}
}

// NewDetector returns a Detector backed by registry.
func NewDetector(registry *walletstate.Registry, opts ...DetectorOption) *Detector {
	d := &Detector{
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Detector) build(wallet, entity string, kind Kind, fill func(*Notification)) Notification {
	n := Notification{
		Wallet:     wallet,
		Kind:       kind,
		Entity:     entity,
		Key:        DedupKey(wallet, entity, kind),
		Severity:   severityOf(kind),
		OccurredAt: d.now(),
	}
	if fill != nil {
		fill(&n)
	}
	n.Message = describe(kind, n)
	return n
}

func (d *Detector) isLocal(address string) bool {
	return d.localAccount != "" && strings.ToLower(address) == d.localAccount
}

// DetectWalletChanges compares two observations of the wallet-level values.
// prev is nil on the first observation, which only seeds the dedup state.
func (d *Detector) DetectWalletChanges(wallet string, prev *WalletState, curr WalletState) []Notification {
	var out []Notification

	if prev == nil {
		if _, ok := d.registry.LastBalance(wallet); !ok {
			d.registry.SetLastBalance(wallet, curr.Balance)
		}
		if _, ok := d.registry.LastOwnersKey(wallet); !ok {
			d.registry.SetLastOwnersKey(wallet, OwnersKey(curr.Owners))
		}
		if _, ok := d.registry.LastThreshold(wallet); !ok {
			d.registry.SetLastThreshold(wallet, curr.Threshold)
		}
	} else {
		if n, ok := d.detectBalance(wallet, prev, curr); ok {
			out = append(out, n)
		}
		if n, ok := d.detectOwners(wallet, prev, curr); ok {
			out = append(out, n)
		}
		if n, ok := d.detectThreshold(wallet, prev, curr); ok {
			out = append(out, n)
		}
	}

	return append(out, d.detectModules(wallet, curr.Modules)...)
}

func (d *Detector) detectBalance(wallet string, prev *WalletState, curr WalletState) (Notification, bool) {
	if !curr.Balance.GreaterThan(prev.Balance) {
		return Notification{}, false
	}

	if last, ok := d.registry.LastBalance(wallet); ok && last.Equal(curr.Balance) {
		return Notification{}, false
	}

	d.registry.SetLastBalance(wallet, curr.Balance)
	return d.build(wallet, EntityBalance, KindBalanceIncreased, func(n *Notification) {
		n.Amount = curr.Balance.Sub(prev.Balance)
	}), true
}

func (d *Detector) detectOwners(wallet string, prev *WalletState, curr WalletState) (Notification, bool) {
	prevSet := ownersSet(prev.Owners)
	currSet := ownersSet(curr.Owners)

	added := currSet.Difference(prevSet).ToSlice()
	removed := prevSet.Difference(currSet).ToSlice()
	if len(added) == 0 && len(removed) == 0 {
		return Notification{}, false
	}

	key := OwnersKey(curr.Owners)
	if last, ok := d.registry.LastOwnersKey(wallet); ok && last == key {
		return Notification{}, false
	}

	d.registry.SetLastOwnersKey(wallet, key)
	slices.Sort(added)
	slices.Sort(removed)
	return d.build(wallet, EntityOwners, KindOwnersChanged, func(n *Notification) {
		n.Added = added
		n.Removed = removed
	}), true
}

func (d *Detector) detectThreshold(wallet string, prev *WalletState, curr WalletState) (Notification, bool) {
	last, ok := d.registry.LastThreshold(wallet)
	if ok && last == curr.Threshold {
		return Notification{}, false
	}
	if !ok && prev.Threshold == curr.Threshold {
		return Notification{}, false
	}

	d.registry.SetLastThreshold(wallet, curr.Threshold)
	return d.build(wallet, EntityThreshold, KindThresholdChanged, func(n *Notification) {
		n.Threshold = curr.Threshold
	}), true
}

// detectModules fires on a flag flip against the recorded status. A module's
// first observation is only recorded.
func (d *Detector) detectModules(wallet string, modules map[string]bool) []Notification {
	names := make([]string, 0, len(modules))
	for m := range modules {
		names = append(names, m)
	}
	slices.Sort(names)

	var out []Notification
	for _, module := range names {
		enabled := modules[module]
		recorded, found := d.registry.ModuleStatus(wallet, module)
		d.registry.SetModuleStatus(wallet, module, enabled)

		if !found || recorded == enabled {
			continue
		}

		kind := KindModuleDisabled
		if enabled {
			kind = KindModuleEnabled
		}
		out = append(out, d.build(wallet, module, kind, nil))
	}

	return out
}

// DetectTransactions compares two observations of the transaction
// collections. The first observation of a wallet seeds every dedup set and
// fires nothing. prev may be nil when the previous collections are unknown.
func (d *Detector) DetectTransactions(wallet string, prev *TransactionSet, curr TransactionSet) []Notification {
	if !d.registry.Observed(wallet, walletstate.Proposed) {
		d.seed(wallet, curr)
		return nil
	}

	var out []Notification
	for _, rec := range curr.Pending {
		out = append(out, d.detectPending(wallet, rec)...)
	}

	seenPending := mapset.NewThreadUnsafeSet[string]()
	if prev != nil {
		seenPending.Append(txmerge.Hashes(prev.Pending)...)
	}

	for _, rec := range curr.Executed {
		if n, ok := d.detectClosed(wallet, rec, walletstate.Executed, KindTransactionExecuted, seenPending); ok {
			out = append(out, n)
		}
	}
	for _, rec := range curr.Cancelled {
		if n, ok := d.detectClosed(wallet, rec, walletstate.Cancelled, KindTransactionCancelled, seenPending); ok {
			out = append(out, n)
		}
	}

	return out
}

func (d *Detector) seed(wallet string, curr TransactionSet) {
	d.registry.SeedHashes(wallet, walletstate.Proposed, txmerge.Hashes(curr.Pending)...)
	d.registry.SeedHashes(wallet, walletstate.Executed, txmerge.Hashes(curr.Executed)...)
	d.registry.SeedHashes(wallet, walletstate.Cancelled, txmerge.Hashes(curr.Cancelled)...)

	for _, rec := range curr.Pending {
		if rec.IsReady() {
			d.registry.MarkHash(wallet, walletstate.Ready, rec.Hash)
		}
		for approver := range rec.Approvals {
			d.registry.MarkApproval(wallet, rec.Hash, strings.ToLower(approver))
		}
	}
}

func (d *Detector) detectPending(wallet string, rec txmerge.TransactionRecord) []Notification {
	var out []Notification

	approvers := make([]string, 0, len(rec.Approvals))
	for a := range rec.Approvals {
		approvers = append(approvers, strings.ToLower(a))
	}
	slices.Sort(approvers)

	if d.registry.MarkHash(wallet, walletstate.Proposed, rec.Hash) {
		out = append(out, d.build(wallet, rec.Hash, KindTransactionProposed, func(n *Notification) {
			n.TxHash = rec.Hash
			n.Actor = rec.Proposer
		}))

		// Approvals present at proposal time are part of the proposal.
		for _, a := range approvers {
			d.registry.MarkApproval(wallet, rec.Hash, a)
		}
	} else {
		out = append(out, d.detectApprovals(wallet, rec.Hash, approvers)...)
	}

	if rec.IsReady() && d.registry.MarkHash(wallet, walletstate.Ready, rec.Hash) {
		out = append(out, d.build(wallet, rec.Hash, KindTransactionReady, func(n *Notification) {
			n.TxHash = rec.Hash
		}))
	}

	return out
}

func (d *Detector) detectApprovals(wallet, tx string, approvers []string) []Notification {
	var out []Notification

	current := mapset.NewThreadUnsafeSet(approvers...)
	for _, a := range approvers {
		if !d.registry.MarkApproval(wallet, tx, a) || d.isLocal(a) {
			continue
		}
		out = append(out, d.build(wallet, tx+":"+a, KindApprovalAdded, func(n *Notification) {
			n.TxHash = tx
			n.Actor = a
		}))
	}

	for _, a := range d.registry.Approvers(wallet, tx) {
		if current.Contains(a) {
			continue
		}
		if !d.registry.UnmarkApproval(wallet, tx, a) || d.isLocal(a) {
			continue
		}
		out = append(out, d.build(wallet, tx+":"+a, KindApprovalRevoked, func(n *Notification) {
			n.TxHash = tx
			n.Actor = a
		}))
	}

	return out
}

// detectClosed fires when a transaction reaches history, provided this
// process saw it pending before. Pre-existing history is recorded silently.
func (d *Detector) detectClosed(wallet string, rec txmerge.TransactionRecord, set walletstate.HashKind, kind Kind, seenPending mapset.Set[string]) (Notification, bool) {
	if d.registry.HasHash(wallet, set, rec.Hash) {
		return Notification{}, false
	}

	visible := d.registry.HasHash(wallet, walletstate.Proposed, rec.Hash) || seenPending.Contains(rec.Hash)
	d.registry.MarkHash(wallet, set, rec.Hash)
	d.registry.ForgetTransaction(wallet, rec.Hash)

	if !visible {
		return Notification{}, false
	}

	return d.build(wallet, rec.Hash, kind, func(n *Notification) {
		n.TxHash = rec.Hash
	}), true
}

func ownersSet(owners []string) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, o := range owners {
		set.Add(strings.ToLower(o))
	}
	return set
}
