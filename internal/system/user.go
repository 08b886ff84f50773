package system

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// User is one login-capable system account.
type User struct {
	Username    string
	DisplayName string
}

const (
	passwdPath    = "/etc/passwd"
	loginDefsPath = "/etc/login.defs"

	defaultUIDMin = 1000
	defaultUIDMax = 60000
)

// hiddenUsers are service accounts never offered on the login screen.
var hiddenUsers = map[string]struct{}{
	"nobody":    {},
	"nfsnobody": {},
	"greeter":   {},
}

// DiscoverUsers enumerates regular accounts from /etc/passwd, bounded by the
// UID range from /etc/login.defs and sorted by username.
func DiscoverUsers() []User {
	data, err := os.ReadFile(passwdPath)
	if err != nil {
		logrus.Warnf("read %s: %v", passwdPath, err)
		return nil
	}
	defs, err := os.ReadFile(loginDefsPath)
	if err != nil {
		logrus.Warnf("read %s, using default UID bounds: %v", loginDefsPath, err)
	}
	minUID, maxUID := parseUIDBounds(string(defs))
	users := parsePasswd(string(data), minUID, maxUID)
	logrus.Debugf("discovered %d users", len(users))
	return users
}

func parsePasswd(content string, minUID, maxUID uint32) []User {
	var users []User
	for _, line := range strings.Split(content, "\n") {
		user, ok := parsePasswdLine(line, minUID, maxUID)
		if !ok {
			continue
		}
		if _, hidden := hiddenUsers[user.Username]; hidden {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

func parsePasswdLine(line string, minUID, maxUID uint32) (User, bool) {
	parts := strings.Split(line, ":")
	if len(parts) < 7 {
		return User{}, false
	}

	username := parts[0]
	uid, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return User{}, false
	}
	if uint32(uid) < minUID || uint32(uid) > maxUID {
		return User{}, false
	}

	shell := parts[6]
	if strings.Contains(shell, "nologin") || strings.Contains(shell, "false") {
		return User{}, false
	}

	// GECOS: full name is the first comma-separated field.
	display, _, _ := strings.Cut(parts[4], ",")
	display = strings.TrimSpace(display)
	if display == username {
		display = ""
	}

	return User{Username: username, DisplayName: display}, true
}

func parseUIDBounds(content string) (uint32, uint32) {
	minUID, maxUID := uint32(defaultUIDMin), uint32(defaultUIDMax)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "UID_MIN":
			minUID = uint32(v)
		case "UID_MAX":
			maxUID = uint32(v)
		}
	}
	return minUID, maxUID
}
