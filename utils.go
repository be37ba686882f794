package vkpresent

import (
	"strings"
	"unsafe"
)

var end = "\x00"
var endChar byte = '\x00'

// ToBytes will take an unsafe.Pointer and length in bytes and convert it
// to a byte slice
func ToBytes(ptr unsafe.Pointer, lenInBytes int) []byte {
	return unsafe.Slice((*byte)(ptr), lenInBytes)
}

// safeString NUL-terminates s, which vulkan-go requires of every string it
// hands to the driver.
func safeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func safeStrings(list []string) []string {
	ret := make([]string, len(list))
	for i := range list {
		ret[i] = safeString(list[i])
	}
	return ret
}

func trimNul(s string) string {
	return strings.TrimRight(s, end)
}

func containsString(list []string, s string) bool {
	s = trimNul(s)
	for _, l := range list {
		if trimNul(l) == s {
			return true
		}
	}
	return false
}

// appendUnique appends the names of add that list does not already contain.
func appendUnique(list []string, add ...string) []string {
	for _, s := range add {
		if !containsString(list, s) {
			list = append(list, s)
		}
	}
	return list
}
