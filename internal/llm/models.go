package llm

// resolveModel maps a friendly model name to a provider model ID.
// Unknown names pass through so full model IDs can be configured directly.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
