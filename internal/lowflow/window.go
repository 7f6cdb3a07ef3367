package lowflow

import "fmt"

// MovingMeans slides a window of windowSize days over points and returns the
// mean of every window whose days are all valid. The divisor is always
// windowSize, so zero-flow days count with full weight.
func MovingMeans(points []DailyPoint, windowSize int) ([]WindowValue, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("%w: window size %d, must be at least 1", ErrInvalidParams, windowSize)
	}

	var windows []WindowValue
	lastGap := -1
	for i, p := range points {
		if !p.Valid {
			lastGap = i
			continue
		}
		start := i - windowSize + 1
		if start < 0 || lastGap >= start {
			continue
		}

		var sum float64
		for _, q := range points[start : i+1] {
			sum += q.Flow
		}
		windows = append(windows, WindowValue{
			Start: points[start].Date,
			End:   p.Date,
			Mean:  sum / float64(windowSize),
		})
	}

	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: no run of %d consecutive observed days", ErrNoCompleteWindows, windowSize)
	}
	return windows, nil
}
