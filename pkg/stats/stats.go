// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package stats holds the arithmetic shared by the analytics endpoints.
package stats

import "math"

// Percent returns part/total*100 rounded half away from zero to two decimals.
// A non-positive total yields 0.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(total)) / 100
}
