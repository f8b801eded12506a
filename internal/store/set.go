package store

// Union appends the values missing from set, keeping first-seen order and
// dropping duplicates within values.
func Union(set []string, values ...string) []string {
	seen := make(map[string]struct{}, len(set)+len(values))
	out := make([]string, 0, len(set)+len(values))
	for _, v := range set {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Difference returns the members of set that are not in values.
func Difference(set []string, values ...string) []string {
	drop := make(map[string]struct{}, len(values))
	for _, v := range values {
		drop[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for _, v := range set {
		if _, ok := drop[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// Intersect returns the members of set that are also in values.
func Intersect(set []string, values ...string) []string {
	keep := make(map[string]struct{}, len(values))
	for _, v := range values {
		keep[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for _, v := range set {
		if _, ok := keep[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
