// Package telemetry collects per-step records and windowed statistics
// from the scheduler's event stream and writes them as CSV.
package telemetry

// StepRecord is one scheduler iteration, written to steps.csv.
type StepRecord struct {
	Step       int     `csv:"step"`
	Agent      string  `csv:"agent"`
	Due        float64 `csv:"due"`
	NextDue    float64 `csv:"next_due"`
	Production string  `csv:"production"`
	Perceived  bool    `csv:"perceived"`
	Outcome    string  `csv:"outcome"` // empty when no motor command
	TimedOut   bool    `csv:"timed_out"`
	State      string  `csv:"state"`
}

// WindowStats summarizes one stats window, written to windows.csv.
type WindowStats struct {
	WindowStart int     `csv:"window_start_step"`
	WindowEnd   int     `csv:"window_end_step"`
	ModelTime   float64 `csv:"model_time"`

	Steps       int `csv:"steps"`
	Perceptions int `csv:"perceptions"`
	Productions int `csv:"productions"`

	Moved       int `csv:"moved"`
	Blocked     int `csv:"blocked"`
	OutOfBounds int `csv:"out_of_bounds"`
	Unknown     int `csv:"unknown_command"`
	Timeouts    int `csv:"timeouts"`

	// Distribution of per-step model-time advances within the window.
	DueGapMean float64 `csv:"due_gap_mean"`
	DueGapP10  float64 `csv:"due_gap_p10"`
	DueGapP50  float64 `csv:"due_gap_p50"`
	DueGapP90  float64 `csv:"due_gap_p90"`
}
