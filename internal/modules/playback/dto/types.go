package dto

type StartInput struct {
	WorkoutID string
	// Speed scales playback time; 0 means real time.
	Speed float64
}

type WorkoutInfo struct {
	ID            string
	Name          string
	Summary       string
	TotalDuration string
	Intervals     int
	Rounds        int
}

type Frame struct {
	Index      int
	Count      int
	Type       string
	Name       string
	RoundLabel string
	Clock      string
	Remaining  float64
	Progress   float64
	Elapsed    float64
	Total      float64
	HeartRate  float64
	Running    bool
	Finished   bool
}
