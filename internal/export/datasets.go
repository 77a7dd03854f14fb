package export

import (
	"strconv"

	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/fit"
	"github.com/rovshanmuradov/montecarlo/internal/gambling"
	"github.com/rovshanmuradov/montecarlo/internal/integral"
)

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// PointHeader is the CSV header of sample point files.
var PointHeader = []string{"x", "y", "class", "contribution"}

// PointRecord converts a sample point to a CSV record.
func PointRecord(p estimate.SamplePoint) []string {
	return []string{ftoa(p.X), ftoa(p.Y), p.Class.String(), strconv.Itoa(p.Contribution)}
}

// Points builds a dataset of classified sample points.
func Points(name string, points []estimate.SamplePoint) Dataset {
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = PointRecord(p)
	}
	return Dataset{Name: name, Header: PointHeader, Rows: rows, Data: points}
}

// Scan builds a dataset of the integrand's bounding grid.
func Scan(name string, scan []integral.ScanPoint) Dataset {
	rows := make([][]string, len(scan))
	for i, p := range scan {
		rows[i] = []string{ftoa(p.X), ftoa(p.Y)}
	}
	return Dataset{Name: name, Header: []string{"x", "y"}, Rows: rows, Data: scan}
}

// Trials builds a dataset of per-trial estimates.
func Trials(name string, agg estimate.Aggregate) Dataset {
	rows := make([][]string, len(agg.Trials))
	for i, r := range agg.Trials {
		errAbs := ""
		if r.AbsoluteError != nil {
			errAbs = ftoa(*r.AbsoluteError)
		}
		rows[i] = []string{strconv.Itoa(i), ftoa(r.Value), errAbs}
	}
	return Dataset{Name: name, Header: []string{"trial", "value", "absolute_error"}, Rows: rows, Data: agg}
}

// Sweep builds a dataset of an accuracy sweep. When trend is not nil every
// row also carries the fitted error.
func Sweep(name string, points []estimate.SweepPoint, trend *fit.Polynomial) Dataset {
	header := []string{"iteration", "points", "tests", "mean", "absolute_error", "single_error"}
	if trend != nil {
		header = append(header, "fitted_error")
	}

	rows := make([][]string, len(points))
	for i, p := range points {
		row := []string{
			strconv.Itoa(p.Iteration),
			strconv.Itoa(p.Points),
			strconv.Itoa(p.Tests),
			ftoa(p.Mean),
			ftoa(p.AbsoluteError),
			ftoa(p.SingleError),
		}
		if trend != nil {
			row = append(row, ftoa(trend.Eval(float64(p.Iteration))))
		}
		rows[i] = row
	}

	data := struct {
		Points []estimate.SweepPoint `json:"points"`
		Trend  *fit.Polynomial       `json:"trend,omitempty"`
	}{points, trend}
	return Dataset{Name: name, Header: header, Rows: rows, Data: data}
}

// Paths builds a long-format dataset of funds paths, one row per actor and period.
func Paths(name string, paths []gambling.Path) Dataset {
	var rows [][]string
	for actor, path := range paths {
		for _, pt := range path {
			rows = append(rows, []string{strconv.Itoa(actor), strconv.Itoa(pt.Period), ftoa(pt.Funds)})
		}
	}
	return Dataset{Name: name, Header: []string{"actor", "period", "funds"}, Rows: rows, Data: paths}
}

// Batch builds a one-row summary dataset of a gambling batch. Paths are left
// to the Paths dataset.
func Batch(name string, res gambling.BatchResult) Dataset {
	summary := res
	summary.Paths = nil

	row := []string{
		summary.Params.Policy.String(),
		strconv.Itoa(summary.Actors),
		ftoa(summary.Params.StartingFunds),
		ftoa(summary.Params.Stake),
		ftoa(summary.Params.WinProbability),
		strconv.Itoa(summary.Params.Periods),
		ftoa(summary.GainPercent),
		ftoa(summary.LossPercent),
		ftoa(summary.BrokePercent),
		ftoa(summary.MeanFinalFunds),
	}
	header := []string{
		"policy", "actors", "starting_funds", "stake", "win_probability", "periods",
		"gain_percent", "loss_percent", "broke_percent", "mean_final_funds",
	}
	return Dataset{Name: name, Header: header, Rows: [][]string{row}, Data: summary}
}
