package conflayer

// mergeSnapshots folds the per-source snapshots into one mapping in
// registration order. The value for any key path is the one from the
// latest-registered source that defines it, compared case-insensitively; a
// source never removes keys it does not itself define.
func mergeSnapshots(snapshots []*Mapping) *Mapping {
	out := NewMapping()
	for _, snap := range snapshots {
		out.Merge(snap)
	}
	return out
}
