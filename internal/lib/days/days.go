// Package days содержит вычисления оставшихся дней доступа.
package days

import "time"

// Until считает количество оставшихся дней от from до deadline,
// округляя неполные сутки вверх. Отрицательный остаток обрезается до нуля.
func Until(from, deadline time.Time) int {
	diff := deadline.Sub(from)
	if diff <= 0 {
		return 0
	}

	d := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		d++
	}
	return d
}
