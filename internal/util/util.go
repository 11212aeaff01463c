package util

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ConvertStringToInt64 converts a decimal string to int64.
func ConvertStringToInt64(src string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(src), 10, 64)
}

func GenUUID() string {
	return uuid.New().String()
}

// FormatCents renders an amount of cents as dollars, e.g. 250 -> "$2.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "$" + strconv.FormatInt(cents/100, 10) + "." + leftPad(strconv.FormatInt(cents%100, 10), 2)
}

func leftPad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}
