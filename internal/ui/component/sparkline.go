package component

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/montecarlo/internal/ui/style"
)

// Spark characters from lowest to highest
var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline represents a mini graph of a numeric series
type Sparkline struct {
	data  []float64
	width int
	style lipgloss.Style
	color lipgloss.Color
}

// NewSparkline creates a new sparkline component
func NewSparkline(width int) *Sparkline {
	return &Sparkline{
		data:  make([]float64, 0),
		width: width,
		style: lipgloss.NewStyle(),
		color: style.DefaultPalette().Primary,
	}
}

// SetData sets the data points for the sparkline. Series longer than the
// width are averaged down into width buckets.
func (s *Sparkline) SetData(data []float64) *Sparkline {
	s.data = Resample(data, s.width)
	return s
}

// SetWidth sets the width of the sparkline
func (s *Sparkline) SetWidth(width int) *Sparkline {
	s.width = width
	s.data = Resample(s.data, width)
	return s
}

// SetColor sets the color for the sparkline
func (s *Sparkline) SetColor(color lipgloss.Color) *Sparkline {
	s.color = color
	return s
}

// View renders the sparkline
func (s *Sparkline) View() string {
	if len(s.data) == 0 {
		return s.style.Render(strings.Repeat("▁", s.width))
	}
	return s.style.Foreground(s.color).Render(s.generateSparkBlocks())
}

// generateSparkBlocks creates the spark characters based on data
func (s *Sparkline) generateSparkBlocks() string {
	min, max, ok := s.getMinMax()
	if !ok {
		return strings.Repeat(" ", s.width)
	}

	var result strings.Builder
	n := 0
	for _, value := range s.data {
		if n >= s.width {
			break
		}
		n++

		if math.IsNaN(value) || math.IsInf(value, 0) {
			result.WriteRune(' ')
			continue
		}
		// If all values are the same, show a flat line
		if min == max {
			result.WriteRune('▄')
			continue
		}

		normalized := (value - min) / (max - min)
		index := int(normalized * float64(len(sparkChars)-1))
		if index < 0 {
			index = 0
		} else if index >= len(sparkChars) {
			index = len(sparkChars) - 1
		}
		result.WriteRune(sparkChars[index])
	}

	// Pad with spaces if we have fewer data points than width
	for ; n < s.width; n++ {
		result.WriteRune(' ')
	}

	return result.String()
}

// getMinMax finds the minimum and maximum finite values in the data
func (s *Sparkline) getMinMax() (min, max float64, ok bool) {
	for _, value := range s.data {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		if !ok {
			min, max, ok = value, value, true
			continue
		}
		if value < min {
			min = value
		}
		if value > max {
			max = value
		}
	}
	return min, max, ok
}

// Resample averages data into at most width buckets of near-equal size.
func Resample(data []float64, width int) []float64 {
	if width <= 0 {
		return nil
	}
	if len(data) <= width {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	out := make([]float64, width)
	for i := range out {
		lo := i * len(data) / width
		hi := (i + 1) * len(data) / width
		sum, n := 0.0, 0
		for _, v := range data[lo:hi] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Clear removes all data points
func (s *Sparkline) Clear() *Sparkline {
	s.data = make([]float64, 0)
	return s
}
