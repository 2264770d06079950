//go:build sqdebug

package collision

import "fmt"

func debugAssert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("collision: "+format, args...))
	}
}
