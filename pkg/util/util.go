package util

import (
	"math"
	"strings"

	"golang.org/x/exp/constraints"
)

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

func ReverseG[T any](arr []T) []T {
	copyArr := make([]T, len(arr))
	copy(copyArr, arr)
	for i, j := 0, len(copyArr)-1; i < j; i, j = i+1, j-1 {
		copyArr[i], copyArr[j] = copyArr[j], copyArr[i]
	}
	return copyArr
}

// KeepCharacters drops every rune of s that is not in toKeep.
func KeepCharacters(s string, toKeep string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(toKeep, r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// KeepDigits is KeepCharacters(s, "0123456789").
func KeepDigits(s string) string {
	return KeepCharacters(s, "0123456789")
}

func Clamp[T constraints.Ordered](val, lo, hi T) T {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Percent returns part/total*100 rounded to two decimals, or 0 for an empty
// total.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return RoundFloat(float64(part)/float64(total)*100.0, 2)
}
