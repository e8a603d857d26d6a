package common

import (
	"strconv"
	"strings"
)

// FormatBRL renders an amount in centavos as a Brazilian currency string,
// e.g. 123456 -> "R$ 1.234,56". Dot as thousands separator, comma as the
// decimal separator.
func FormatBRL(centavos int64) string {
	neg := centavos < 0
	if neg {
		centavos = -centavos
	}
	reais := centavos / 100
	cents := centavos % 100

	digits := strconv.FormatInt(reais, 10)
	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3 + 8)
	if neg {
		b.WriteString("-R$ ")
	} else {
		b.WriteString("R$ ")
	}
	rem := len(digits) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(digits[:rem])
	for i := rem; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	b.WriteByte(',')
	if cents < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(cents, 10))
	return b.String()
}
