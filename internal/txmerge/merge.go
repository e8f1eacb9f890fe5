package txmerge

// InsertPending prepends rec to pending, dropping any entry (optimistic
// placeholder or stale copy) with the same hash, and truncates the result to
// max entries so the oldest are dropped first. The input slice is not
// modified.
func InsertPending(pending []TransactionRecord, rec TransactionRecord, max int) []TransactionRecord {
	return prepend(pending, rec, max)
}

// ReplaceInPlace swaps the entry sharing rec's hash for rec, keeping its
// position. It reports false when no such entry exists.
func ReplaceInPlace(list []TransactionRecord, rec TransactionRecord) ([]TransactionRecord, bool) {
	for i := range list {
		if list[i].Hash == rec.Hash {
			out := make([]TransactionRecord, len(list))
			copy(out, list)
			out[i] = rec
			return out, true
		}
	}

	return list, false
}

// MoveToHistory removes rec from pending and prepends it to history, capped
// at max entries.
func MoveToHistory(pending, history []TransactionRecord, rec TransactionRecord, max int) (newPending, newHistory []TransactionRecord) {
	return Remove(pending, rec.Hash), prepend(history, rec, max)
}

// Remove returns list without the entries matching hash.
func Remove(list []TransactionRecord, hash string) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(list))
	for _, r := range list {
		if r.Hash != hash {
			out = append(out, r)
		}
	}
	return out
}

// Upsert applies rec to pending: a pending record already present is
// replaced in place, otherwise it is inserted at the head.
func Upsert(pending []TransactionRecord, rec TransactionRecord, max int) []TransactionRecord {
	if out, ok := ReplaceInPlace(pending, rec); ok && !hasOptimistic(pending, rec.Hash) {
		return out
	}
	return InsertPending(pending, rec, max)
}

// Hashes returns the hashes of list in order.
func Hashes(list []TransactionRecord) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.Hash
	}
	return out
}

func hasOptimistic(list []TransactionRecord, hash string) bool {
	for _, r := range list {
		if r.Hash == hash && r.Optimistic {
			return true
		}
	}
	return false
}

func prepend(list []TransactionRecord, rec TransactionRecord, max int) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(list)+1)
	out = append(out, rec)
	for _, r := range list {
		if r.Hash != rec.Hash {
			out = append(out, r)
		}
	}

	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
