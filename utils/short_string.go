package utils

import "fmt"

// ShortenLog trims a hash for log lines: first and last 8 characters.
func ShortenLog(hash string) string {
	cut := 8
	if len(hash) <= 8 {
		return hash
	} else if len(hash) <= 16 {
		cut = 4
	}
	return fmt.Sprintf("%s...%s", hash[:cut], hash[len(hash)-cut:])
}
