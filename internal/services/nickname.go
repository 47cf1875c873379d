package services

import (
	"fmt"
	"strconv"
	"strings"
)

// resolveNickname returns the requested nickname, or a " (N)"-suffixed
// variant when it is already taken in the session. The suffix is one past the
// highest suffix already handed out for that base, so numbering only moves
// forward: the second "Aidos" becomes "Aidos (2)", and with "Aidos" and
// "Aidos (3)" taken the next one becomes "Aidos (4)".
func resolveNickname(requested string, taken []string) string {
	base := strings.TrimSpace(requested)

	baseTaken := false
	maxSuffix := 1
	prefix := base + " ("
	for _, nickname := range taken {
		if nickname == base {
			baseTaken = true
			continue
		}
		if !strings.HasPrefix(nickname, prefix) || !strings.HasSuffix(nickname, ")") {
			continue
		}
		n, err := strconv.Atoi(nickname[len(prefix) : len(nickname)-1])
		if err == nil && n > maxSuffix {
			maxSuffix = n
		}
	}

	if !baseTaken {
		return base
	}
	return fmt.Sprintf("%s (%d)", base, maxSuffix+1)
}
