package config

// MergePrecedence merges config maps from lowest to highest precedence.
func MergePrecedence(layers ...map[string]string) map[string]string {
	merged := map[string]string{}
	for _, values := range layers {
		for key, value := range values {
			merged[key] = value
		}
	}
	return merged
}
