package gglayout

import "math"

// updateContentSize recomputes the main-axis content extent after the
// committed structure changed. While items remain unmeasured the extent
// only grows, and only by more than contentSizeMinDelta, unless
// allowShrink is set because the collection itself changed. Once every
// item is measured it snaps to the exact extent.
func (l *Layout) updateContentSize(s *Structure, allowShrink bool) {
	g, scale := l.currentGeometry()
	count := l.provider.count()
	complete := s.Len() >= count && len(l.gaps) == 0
	est := l.estimateMainExtent(s, &g, count)

	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.measured
	if size.IsEmpty() {
		size = SizeFromPixels(0, 0, scale)
	}
	cur := size.Pixels.Height
	if g.horizontal {
		cur = size.Pixels.Width
	}

	switch {
	case complete:
		if est == cur {
			return
		}
	case math.Abs(est-cur) <= contentSizeMinDelta:
		return
	case est < cur && !allowShrink:
		return
	}

	if g.horizontal {
		size.Pixels.Width = est
	} else {
		size.Pixels.Height = est
	}
	l.measured = size
	l.logger().Debug("gglayout: content size updated", "extent", est, "measured", s.Len(), "count", count)
}

// MeasuredContentEnd returns the main-axis end of the committed cells,
// relative to the layout origin.
func (l *Layout) MeasuredContentEnd() float64 {
	g, _ := l.currentGeometry()
	return g.end(l.LatestStructure())
}

// EstimatedContentSize returns the main-axis extent estimated for the
// whole collection from the committed cells.
func (l *Layout) EstimatedContentSize() float64 {
	g, _ := l.currentGeometry()
	return l.estimateMainExtent(l.LatestStructure(), &g, l.provider.count())
}

// MeasuredItemsPercentage returns the committed share of the collection in [0, 1].
func (l *Layout) MeasuredItemsPercentage() float64 {
	count := l.provider.count()
	if count == 0 {
		return 1
	}
	return min(float64(l.LatestStructure().Len())/float64(count), 1)
}
