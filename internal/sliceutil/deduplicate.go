// Package sliceutil holds small generic slice helpers.
package sliceutil

// Deduplicate keeps the first item for each key, in input order.
//
//	providers := sliceutil.Deduplicate(parsed, func(p genai.Provider) genai.Provider { return p })
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[K]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		key := keyFunc(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}
	return result
}

// Unique is Deduplicate keyed on the item itself.
func Unique[T comparable](items []T) []T {
	return Deduplicate(items, func(v T) T { return v })
}
