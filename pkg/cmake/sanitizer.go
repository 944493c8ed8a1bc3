package cmake

import (
	"fmt"
	"sort"
	"strings"
)

var sanitizers = map[string]string{
	"asan":  "address",
	"ubsan": "undefined",
	"tsan":  "thread",
	"msan":  "memory",
	"lsan":  "leak",
}

// Sanitizers lists the accepted sanitizer tags.
func Sanitizers() []string {
	tags := make([]string, 0, len(sanitizers))
	for tag := range sanitizers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SanitizerDefines returns the cache definitions enabling tag for C, C++ and linking.
func SanitizerDefines(tag string) ([]string, error) {
	name, ok := sanitizers[tag]
	if !ok {
		return nil, fmt.Errorf("unknown sanitizer %q (expected one of %s)", tag, strings.Join(Sanitizers(), ", "))
	}
	flags := "-fsanitize=" + name + " -fno-omit-frame-pointer"
	return []string{
		"-DCMAKE_C_FLAGS=" + flags,
		"-DCMAKE_CXX_FLAGS=" + flags,
		"-DCMAKE_EXE_LINKER_FLAGS=-fsanitize=" + name,
	}, nil
}
