package utils

import "strings"

// NormalizeItemKey canonicalizes an item identifier the way the balance
// document expects it: trimmed, upper-cased, spaces and dashes collapsed to
// underscores. "iron ore" and "IRON-ORE" both become "IRON_ORE".
func NormalizeItemKey(input string) string {
	replacer := strings.NewReplacer(
		" ", "_",
		"-", "_",
	)
	key := replacer.Replace(strings.TrimSpace(input))
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}
	return strings.ToUpper(strings.Trim(key, "_"))
}
