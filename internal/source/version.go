package source

import "fmt"

// Version is the dialect of the modeling language a document is written in.
type Version string

const (
	Version1  Version = "1"
	Version11 Version = "1.1"
)

// Versions lists every supported dialect, oldest first.
func Versions() []Version {
	return []Version{Version1, Version11}
}

// ParseVersion validates a `yang-version` argument.
func ParseVersion(s string) (Version, error) {
	switch Version(s) {
	case Version1, Version11:
		return Version(s), nil
	default:
		return "", fmt.Errorf("unsupported language version %q", s)
	}
}
