package core

// RuntimeConfig describes the terminal a front end draws into.
type RuntimeConfig struct {
	ScreenW int   // Screen width in characters
	ScreenH int   // Screen height in characters
	Seed    int64 // RNG seed for maze generation, 0 means time-based
}

// DefaultConfig returns an 80x24 terminal with a time-based seed.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW: 80,
		ScreenH: 24,
	}
}
