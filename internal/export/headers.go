package export

// Headers resolves the display label of every column in s.
func Headers(s Schema, titles Titles) []string {
	keys := s.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = titles.Label(k)
	}
	return out
}
