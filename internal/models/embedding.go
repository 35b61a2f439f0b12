package models

import (
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
)

// DescriptionEmbedding returns a small deterministic embedding for text:
// its length, vowel count and consonant count.
func DescriptionEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var vowels, consonants float32
	for _, r := range text {
		if strings.ContainsRune("aeiou", r) {
			vowels++
		} else if r >= 'a' && r <= 'z' {
			consonants++
		}
	}
	length := float32(len(text))
	return pgvector.NewVector([]float32{length, vowels, consonants})
}
