package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// QuestionKey hashes a question after case folding and whitespace collapse,
// so trivially different spellings share a cache entry.
func QuestionKey(question string) string {
	return HashString(strings.ToLower(strings.Join(strings.Fields(question), " ")))
}
