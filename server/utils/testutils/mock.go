package testutils

import (
	"github.com/stretchr/testify/mock"
)

// GetMockArgumentsWithType returns num matchers for arguments of the given type.
func GetMockArgumentsWithType(typeString string, num int) []interface{} {
	ret := make([]interface{}, num)
	for i := 0; i < len(ret); i++ {
		ret[i] = mock.AnythingOfType(typeString)
	}
	return ret
}

// GetMockArgumentsAnything returns num matchers that accept any argument.
func GetMockArgumentsAnything(num int) []interface{} {
	ret := make([]interface{}, num)
	for i := 0; i < len(ret); i++ {
		ret[i] = mock.Anything
	}
	return ret
}
