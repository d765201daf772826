package tasks

// Difference returns the IDs present in source but absent from target.
//
// Duplicates collapse to their first occurrence and source order is kept, so batches are deterministic.
// IDs are compared by exact string equality.
func Difference(source, target []string) []string {
	exclude := make(map[string]struct{}, len(target)+len(source))
	for _, id := range target {
		exclude[id] = struct{}{}
	}

	var missing []string
	for _, id := range source {
		if _, ok := exclude[id]; ok {
			continue
		}
		exclude[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}
