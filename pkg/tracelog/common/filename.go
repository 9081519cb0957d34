package common

import (
	"fmt"
	"strconv"
	"strings"
)

// TraceFileName builds a trace file name from a unix timestamp and the
// writer generation, e.g. 1755923456.007. The generation wraps modulo
// 1000 to bound name cardinality while keeping names created within the
// same second distinct.
func TraceFileName(sec int64, generation int) string {
	return fmt.Sprintf("%d.%03d", sec, generation%1000)
}

func GetLockName() string {
	return "LOCK"
}

func IsTraceFile(name string) bool {
	_, _, ok := ParseTraceFileName(name)
	return ok
}

// ParseTraceFileName splits a trace file name into its timestamp and
// generation parts. ok is false for names this package did not create.
func ParseTraceFileName(name string) (sec int64, generation int, ok bool) {
	dot := strings.IndexByte(name, '.')
	if dot <= 0 {
		return 0, 0, false
	}
	sec, err := strconv.ParseInt(name[:dot], 10, 64)
	if err != nil || sec < 0 {
		return 0, 0, false
	}
	genstr := name[dot+1:]
	if len(genstr) != 3 {
		return 0, 0, false
	}
	generation, err = strconv.Atoi(genstr)
	if err != nil || generation < 0 {
		return 0, 0, false
	}
	return sec, generation, true
}
