package utils

import (
	"strings"

	"github.com/sethvargo/go-password/password"
)

// GenerateRandomString returns an upper-case alphanumeric string of length n.
func GenerateRandomString(n int) (string, error) {
	digits := n / 3
	res, err := password.Generate(n, digits, 0, false, true)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(res), nil
}
