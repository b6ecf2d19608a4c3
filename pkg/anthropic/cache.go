package anthropic

// BuildCachedSystemBlocks constructs system content blocks with a cache
// breakpoint. The pipeline's system prompts are identical across queries,
// so repeated queries hit the warm prompt cache.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{
		{
			Text: text,
			CacheControl: &CacheControl{
				TTL: "1h",
			},
		},
	}
}
