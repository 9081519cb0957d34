package util

import "fmt"

func Assert(cond bool) {
	if !cond {
		panic("assert fail")
	}
}

func Assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("assert fail: "+format, args...))
	}
}
