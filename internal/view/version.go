package view

import (
	"strconv"
	"strings"
)

// CompareVersions orders dotted versions numerically segment by segment, most
// significant first: "2.0.10" > "2.0.9". Missing segments count as 0;
// non-numeric segments also count as 0. This is never a string comparison.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av := segment(as, i)
		bv := segment(bs, i)
		if av != bv {
			if av > bv {
				return 1
			}
			return -1
		}
	}
	return 0
}

func segment(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0
	}
	return v
}
