//go:build !sqdebug

package collision

func debugAssert(bool, string, ...any) {}
