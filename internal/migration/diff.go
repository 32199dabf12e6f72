package migration

// pending computes the set difference source \ applied, preserving the
// ascending order of source. Name comparison is sufficient: filenames are
// unique by construction and encode chronological order, so no content
// hashing is needed. A source file deleted after being applied simply never
// shows up here; its ledger entry stays available for rollback because
// entries are independent snapshots, not references.
func pending(source []mfile, applied []string) []mfile {
	seen := make(map[string]struct{}, len(applied))
	for _, name := range applied {
		seen[name] = struct{}{}
	}
	out := make([]mfile, 0, len(source))
	for _, f := range source {
		if _, ok := seen[f.name]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}
