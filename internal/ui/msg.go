package ui

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// ProgressMsg reports how far a running scenario has come.
type ProgressMsg struct {
	RunID int
	Done  int
	Total int
	Label string
}

// ScenarioDoneMsg carries the report of a finished scenario run.
type ScenarioDoneMsg struct {
	RunID  int
	Report Report
	Err    error
}

// Stat is one labelled scalar of a report.
type Stat struct {
	Label string
	Value string
}

// Report is what a scenario run shows on screen.
type Report struct {
	Stats []Stat
	// Series is drawn as a sparkline under the stats.
	Series      []float64
	SeriesLabel string
	// Trend is an optional second series, drawn under Series.
	Trend      []float64
	TrendLabel string
}

// Route represents different screens in the application
type Route int

const (
	RouteMainMenu Route = iota
	RoutePi
	RoutePiSweep
	RouteIntegral
	RouteGamblingFlat
	RouteGamblingFlatAbsorbing
	RouteGamblingDoubling
	RouteGamblingDoublingAbsorbing
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteMainMenu:
		return "main_menu"
	case RoutePi:
		return "pi"
	case RoutePiSweep:
		return "pi_sweep"
	case RouteIntegral:
		return "integral"
	case RouteGamblingFlat:
		return "gambling_flat"
	case RouteGamblingFlatAbsorbing:
		return "gambling_flat_absorbing"
	case RouteGamblingDoubling:
		return "gambling_doubling"
	case RouteGamblingDoublingAbsorbing:
		return "gambling_doubling_absorbing"
	default:
		return "unknown"
	}
}
