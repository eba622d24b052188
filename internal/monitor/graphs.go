package monitor

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// RenderSparkline renders CPU history as one row of block characters on a
// fixed 0-100 scale. History shorter than width is right-aligned so the
// newest sample is always at the right edge.
func RenderSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	points := data
	if len(data) > width {
		points = resampleData(data, width)
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", width-len(points)))
	for _, val := range points {
		if math.IsNaN(val) {
			b.WriteRune(' ')
			continue
		}
		normalized := normalizeValue(val, 0, 100)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		b.WriteRune(sparklineBlocks[idx])
	}
	return b.String()
}

// RenderColoredSparkline renders a sparkline colored by the newest sample.
func RenderColoredSparkline(data []float64, width int) string {
	line := RenderSparkline(data, width)
	if len(data) == 0 {
		return line
	}
	return lipgloss.NewStyle().Foreground(MetricColor(data[len(data)-1])).Render(line)
}

// resampleData compresses data to targetSize buckets, keeping the max of each
// bucket so spikes stay visible.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) <= targetSize {
		return data
	}

	result := make([]float64, targetSize)
	bucketSize := float64(len(data)) / float64(targetSize)
	for i := 0; i < targetSize; i++ {
		start := int(float64(i) * bucketSize)
		end := int(float64(i+1) * bucketSize)
		if end > len(data) {
			end = len(data)
		}
		if start >= end {
			start = end - 1
		}

		maxVal := data[start]
		for j := start + 1; j < end; j++ {
			if data[j] > maxVal {
				maxVal = data[j]
			}
		}
		result[i] = maxVal
	}
	return result
}
