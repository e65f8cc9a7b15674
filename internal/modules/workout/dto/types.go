package dto

const (
	MergeAppend = "append"
	MergeUpsert = "upsert"
)

type PlanInput struct {
	Name          string
	Rounds        int
	HighIntensity float64
	LowIntensity  float64
	Warmup        float64
	CoolDown      float64
}

type CreateInput struct {
	Plan PlanInput
}

type EditInput struct {
	ID   string
	Plan PlanInput
}

type IntervalInput struct {
	ID       string
	Type     string
	Duration float64
}

type WorkoutInput struct {
	ID        string
	Name      string
	Intervals []IntervalInput
}

type ImportInput struct {
	Workouts []WorkoutInput
	Merge    string
}

type ImportOutput struct {
	Imported int
	Merge    string
}

type ListInput struct {
	SampleWhenEmpty bool
}

type IntervalOutput struct {
	ID       string
	Type     string
	Name     string
	Duration float64
	Round    int
}

type WorkoutOutput struct {
	ID            string
	Name          string
	Summary       string
	TotalSeconds  float64
	TotalDuration string
	Rounds        int
	Intervals     []IntervalOutput
}

type PlanOutput struct {
	ID   string
	Plan PlanInput
}

type ListingOutput struct {
	ID            string
	Name          string
	Summary       string
	IntervalCount int
	TotalDuration string
	UpdatedAt     string
}
