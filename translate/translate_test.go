package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLanguage(t *testing.T) {
	assert := assert.New(t)

	assert.False(SetLanguage("", "not a language tag!"))
	assert.True(SetLanguage("not a language tag!", "en-US"))

	assert.Equal("word 2a at r7", From("word %x at %v", 42, "r7"))
}
