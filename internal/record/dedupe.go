package record

// Dedupe removes duplicate records by identity key, preserving first-seen
// order. It is idempotent: deduping an already-deduped sequence is a no-op.
func Dedupe(records []*Record) []*Record {
	seen := make(map[Key]bool, len(records))
	unique := make([]*Record, 0, len(records))
	for _, r := range records {
		key := r.IdentityKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, r)
	}
	return unique
}

// MergeDedupe merges previously persisted records with a new batch. Prior
// records come first, so a new record whose identity matches one already
// persisted is treated as a repeat and dropped. The prior sequence is not
// assumed to be internally deduplicated; the union is deduped as a whole.
func MergeDedupe(prior, fresh []*Record) []*Record {
	merged := make([]*Record, 0, len(prior)+len(fresh))
	merged = append(merged, prior...)
	merged = append(merged, fresh...)
	return Dedupe(merged)
}
