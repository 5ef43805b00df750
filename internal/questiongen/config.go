package questiongen

// Config controls the behavior of the Generator.
type Config struct {
	// MaxInputChars is the number of source characters sent to the model.
	// Longer text is cut and marked with "...".
	MaxInputChars int

	// MinTextLength is the minimum trimmed text length worth generating from.
	MinTextLength int

	// Temperature controls model output randomness. Zero leaves the
	// provider default.
	Temperature float64
}

// DefaultCount is the number of questions requested when none is given.
const DefaultCount = 3

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		MaxInputChars: 4000,
		MinTextLength: 50,
	}
}
