package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hivespace/hivechat/chat"
)

// Resolve finds the session named by arg: a 1-based position in the
// list, an exact ID, or a unique ID prefix.
func Resolve(sessions []chat.Session, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("no chat given")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(sessions) {
			return "", fmt.Errorf("no chat number %d (have %d)", n, len(sessions))
		}
		return sessions[n-1].ID, nil
	}
	if i := chat.Find(sessions, arg); i >= 0 {
		return arg, nil
	}
	var match string
	for _, s := range sessions {
		if strings.HasPrefix(s.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("%q matches more than one chat", arg)
			}
			match = s.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no chat matches %q", arg)
	}
	return match, nil
}
