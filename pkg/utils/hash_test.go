package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashString(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", HashString(""))
}

func TestQuestionKey(t *testing.T) {
	assert.Equal(t, QuestionKey("What is  Go?"), QuestionKey("  what is go? "))
	assert.NotEqual(t, QuestionKey("what is go"), QuestionKey("what is rust"))
}
