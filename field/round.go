package field

import (
	"fmt"
	"math"
	"strconv"
)

// RoundSig rounds x to the given number of significant figures, so that
// 0.0033333 becomes 0.00333 and 1234.5 becomes 1230. Ties on the decimal
// expansion of x round to even. Infinities and NaN cannot be rounded.
func RoundSig(x float64, digits int) (float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("cannot round %v to %d significant figures", x, digits)
	}
	if x == 0 || digits < 1 {
		return x, nil
	}

	// strconv performs correctly-rounded decimal conversion of the exact
	// binary value, which is what we want here.
	return strconv.ParseFloat(strconv.FormatFloat(x, 'e', digits-1, 64), 64)
}
