package format

import (
	"fmt"
	"math"
	"strconv"
)

// RoundComplex rounds both parts of z to the given number of decimals.
func RoundComplex(z complex128, decimals int) complex128 {
	scale := math.Pow(10, float64(decimals))
	return complex(math.Round(real(z)*scale)/scale, math.Round(imag(z)*scale)/scale)
}

// FormatComplex renders z as "(x+yi)" rounded to the given number of
// decimals. A negative precision prints the shortest exact representation.
// Negative zeros are printed without a sign.
func FormatComplex(z complex128, decimals int) string {
	if decimals >= 0 {
		z = RoundComplex(z, decimals)
	}
	re, im := real(z), imag(z)
	if re == 0 {
		re = 0
	}
	sign := "+"
	if im < 0 {
		sign, im = "-", -im
	}
	if im == 0 {
		im = 0
	}
	return fmt.Sprintf("(%s%s%si)",
		strconv.FormatFloat(re, 'f', decimals, 64), sign, strconv.FormatFloat(im, 'f', decimals, 64))
}
