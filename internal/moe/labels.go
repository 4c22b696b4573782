package moe

import (
	"strconv"
	"strings"
)

// KeySeparator separates class IDs in an expert key.
const KeySeparator = "_"

// ParseClassIDs returns the class IDs encoded in an expert key, in order.
//
// Each segment contributes its leading base-10 integer: leading
// whitespace and a sign are accepted and trailing text is ignored, so
// "23v2" yields 23. Segments with no leading integer, or one that
// overflows int, are skipped and reported to obs (which may be nil). An
// empty key yields an empty, non-nil slice.
//
// Example:
//
//	ParseClassIDs("5_23", nil)     // [5 23]
//	ParseClassIDs("5_23v2", nil)   // [5 23]
//	ParseClassIDs("5_abc_23", obs) // [5 23], obs notified about "abc"
func ParseClassIDs(key string, obs Observer) []int {
	ids := make([]int, 0, strings.Count(key, KeySeparator)+1)
	if key == "" {
		return ids
	}

	for _, segment := range strings.Split(key, KeySeparator) {
		id, err := leadingInt(segment)
		if err != nil {
			if obs != nil {
				obs.LabelSegmentSkipped(key, segment, err)
			}
			continue
		}
		ids = append(ids, id)
	}

	return ids
}

// leadingInt parses the optionally signed digit run at the start of s,
// after any leading whitespace.
func leadingInt(s string) (int, error) {
	num := strings.TrimLeft(s, " \t\n\v\f\r")
	end := 0
	if end < len(num) && (num[end] == '+' || num[end] == '-') {
		end++
	}
	digits := end
	for end < len(num) && num[end] >= '0' && num[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, &strconv.NumError{Func: "Atoi", Num: s, Err: strconv.ErrSyntax}
	}
	return strconv.Atoi(num[:end])
}
