// Package system holds the external collaborators: session and user
// discovery from the filesystem, power control, and the command runner the
// onboarding wizard uses to change the live system.
package system

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// SessionType distinguishes Wayland and X11 desktop sessions.
type SessionType int

const (
	SessionWayland SessionType = iota
	SessionX11
)

// XDGType returns the value used for XDG_SESSION_TYPE.
func (t SessionType) XDGType() string {
	if t == SessionX11 {
		return "x11"
	}
	return "wayland"
}

// Session is one launchable desktop session, parsed from a .desktop entry.
// Records are immutable once discovered.
type Session struct {
	Name         string
	Slug         string
	Exec         string
	DesktopNames []string
	Type         SessionType
}

// BuildCmd splits the session's Exec line into an argv.
func (s Session) BuildCmd() []string {
	cmd := splitCommandLine(s.Exec)
	if len(cmd) == 0 {
		return []string{s.Exec}
	}
	return cmd
}

// BuildEnv returns the environment additions for StartSession.
func (s Session) BuildEnv() []string {
	envs := []string{"XDG_SESSION_TYPE=" + s.Type.XDGType()}
	if len(s.DesktopNames) > 0 {
		envs = append(envs, "XDG_CURRENT_DESKTOP="+strings.Join(s.DesktopNames, ":"))
	}
	return envs
}

type xdgEnv struct {
	DataDirs string `env:"XDG_DATA_DIRS" envDefault:"/usr/local/share:/usr/share"`
}

// DiscoverSessions walks the wayland-sessions and xsessions directories under
// every XDG data dir, returning sessions sorted by display name and
// de-duplicated by slug.
func DiscoverSessions() []Session {
	var cfg xdgEnv
	if err := env.Parse(&cfg); err != nil {
		logrus.Warnf("read XDG environment: %v", err)
		cfg.DataDirs = "/usr/local/share:/usr/share"
	}

	var sessions []Session
	for _, dir := range strings.Split(cfg.DataDirs, ":") {
		if dir == "" {
			continue
		}
		sessions = append(sessions, loadSessionDir(filepath.Join(dir, "wayland-sessions"), SessionWayland)...)
		sessions = append(sessions, loadSessionDir(filepath.Join(dir, "xsessions"), SessionX11)...)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return strings.ToLower(sessions[i].Name) < strings.ToLower(sessions[j].Name)
	})

	seen := make(map[string]struct{}, len(sessions))
	deduped := sessions[:0]
	for _, s := range sessions {
		if _, ok := seen[s.Slug]; ok {
			continue
		}
		seen[s.Slug] = struct{}{}
		deduped = append(deduped, s)
	}

	logrus.Debugf("discovered %d sessions", len(deduped))
	return deduped
}

func loadSessionDir(dir string, sessionType SessionType) []Session {
	var mu sync.Mutex
	var sessions []Session

	conf := fastwalk.DefaultConfig
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries.
		}
		if d.IsDir() {
			if path != dir {
				return fs.SkipDir // Session dirs are flat.
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".desktop") {
			return nil
		}
		if s, ok := parseDesktopFile(path, sessionType); ok {
			mu.Lock()
			sessions = append(sessions, s)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		logrus.Debugf("walk session dir %s: %v", dir, err)
	}
	return sessions
}

// parseDesktopFile reads one freedesktop .desktop entry. Hidden and
// NoDisplay entries are skipped.
func parseDesktopFile(path string, sessionType SessionType) (Session, bool) {
	file, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		logrus.Debugf("parse desktop file %s: %v", path, err)
		return Session{}, false
	}
	section := file.Section("Desktop Entry")
	if section.Key("Hidden").String() == "true" || section.Key("NoDisplay").String() == "true" {
		return Session{}, false
	}

	name := section.Key("Name").String()
	exec := section.Key("Exec").String()
	if name == "" || exec == "" {
		return Session{}, false
	}

	var desktopNames []string
	if raw := section.Key("DesktopNames").String(); raw != "" {
		for _, n := range strings.Split(raw, ";") {
			if n != "" {
				desktopNames = append(desktopNames, n)
			}
		}
	}

	return Session{
		Name:         name,
		Slug:         strings.TrimSuffix(filepath.Base(path), ".desktop"),
		Exec:         exec,
		DesktopNames: desktopNames,
		Type:         sessionType,
	}, true
}

// splitCommandLine splits a shell-style Exec value on whitespace, honoring
// single and double quotes.
func splitCommandLine(s string) []string {
	var args []string
	var cur strings.Builder
	var quote rune
	inWord := false

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args
}
