package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenUsageAdd(t *testing.T) {
	u := TokenUsage{InputTokens: 100, OutputTokens: 50}
	u.Add(TokenUsage{InputTokens: 10, OutputTokens: 5, CacheReadInputTokens: 7})

	assert.Equal(t, int64(110), u.InputTokens)
	assert.Equal(t, int64(55), u.OutputTokens)
	assert.Equal(t, int64(7), u.CacheReadInputTokens)
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("You are an expert guitar consultant.")

	assert.Len(t, blocks, 1)
	assert.Equal(t, "You are an expert guitar consultant.", blocks[0].Text)
	assert.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}

func TestToSDKMessagesRoles(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "find me a strat"},
		{Role: "assistant", Content: "ok"},
	})

	assert.Len(t, msgs, 2)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
}
