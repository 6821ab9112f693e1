package progress

import (
	"math"
	"math/big"
	"time"
)

// Percent returns the integer completion percentage of current out of total,
// rounded down. An empty task (total == 0) is always 100% complete.
func Percent(current, total int) int {
	if total == 0 {
		return 100
	}
	return current * 100 / total
}

// EstimateRemaining extrapolates linearly how long the rest of the task will
// take, given that current of total items took elapsed.
//
// ok is false when no estimate is possible: nothing is done yet out of a
// non-empty task. A task with nothing to do has zero remaining time.
func EstimateRemaining(elapsed time.Duration, current, total int) (remaining time.Duration, ok bool) {
	if current == 0 {
		if total == 0 {
			return 0, true
		}
		return 0, false
	}
	return mulDiv(elapsed, int64(total-current), int64(current)), true
}

// mulDiv returns d*n/m rounded to the nearest microsecond, ties to even,
// without overflowing the intermediate product. m must be positive. Results
// outside the Duration range saturate.
func mulDiv(d time.Duration, n, m int64) time.Duration {
	const unit = int64(time.Microsecond)
	if m <= math.MaxInt64/unit && (n == 0 || absInt64(int64(d)) <= math.MaxInt64/absInt64(n)) {
		num, den := int64(d)*n, m*unit
		q, r := num/den, absInt64(num%den)
		if r > den-r || (r == den-r && q%2 != 0) {
			if num < 0 {
				q--
			} else {
				q++
			}
		}
		switch {
		case q > math.MaxInt64/unit:
			return time.Duration(math.MaxInt64)
		case q < math.MinInt64/unit:
			return time.Duration(math.MinInt64)
		}
		return time.Duration(q * unit)
	}

	num := new(big.Int).Mul(big.NewInt(int64(d)), big.NewInt(n))
	den := new(big.Int).Mul(big.NewInt(m), big.NewInt(unit))
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	twice := new(big.Int).Lsh(r.Abs(r), 1)
	if c := twice.Cmp(den); c > 0 || (c == 0 && q.Bit(0) == 1) {
		q.Add(q, big.NewInt(int64(num.Sign())))
	}
	q.Mul(q, big.NewInt(unit))
	switch {
	case q.IsInt64():
		return time.Duration(q.Int64())
	case q.Sign() > 0:
		return time.Duration(math.MaxInt64)
	default:
		return time.Duration(math.MinInt64)
	}
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// hasEstimate reports whether the status line for current/total carries the
// remaining time and finish timestamp. Overshoot never does.
func hasEstimate(current, total int) bool {
	return current > 0 && current <= total
}
