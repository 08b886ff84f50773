package system

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Runner executes the system changes driven by the onboarding wizard.
// The greeter and wizard only ever talk to this interface; DryRunner stands
// in when the live system must not be touched.
type Runner interface {
	// CheckNetwork reports whether the machine currently has connectivity.
	CheckNetwork() bool

	ListLocales() []string
	ListKeymaps() []string
	ListTimezones() []string

	// CreateUser adds a user with a home directory, shell, and supplementary
	// groups, then sets its password.
	CreateUser(username, password string, groups []string, shell string) error
	SetLocale(locale string) error
	SetKeymap(keymap string) error
	SetTimezone(timezone string) error

	// RunAsUser runs argv as username via a login shell and returns the
	// captured output.
	RunAsUser(username string, argv []string) (string, error)
	// RunAsUserSudo is RunAsUser under sudo; the password travels over the
	// process's stdin, never on the command line, and sudo's own prompts are
	// filtered from the captured output.
	RunAsUserSudo(username string, argv []string, password string) (string, error)

	// RemoveInitialSession deletes the auto-login block from the greetd
	// daemon configuration so the wizard does not run again on next boot.
	RemoveInitialSession() error
}

// NewRunner returns the live runner, or the side-effect-free dry runner.
func NewRunner(dryRun bool) Runner {
	if dryRun {
		return DryRunner{}
	}
	return liveRunner{greetdConfig: greetdConfigPath}
}

const greetdConfigPath = "/etc/greetd/config.toml"

type liveRunner struct {
	greetdConfig string
}

func (liveRunner) CheckNetwork() bool {
	err := exec.Command("ping", "-c", "1", "-W", "2", "1.1.1.1").Run()
	return err == nil
}

func (liveRunner) ListLocales() []string {
	return listFromCommand("localectl", "list-locales", []string{"en_US.UTF-8"})
}

func (liveRunner) ListKeymaps() []string {
	return listFromCommand("localectl", "list-keymaps", []string{"us"})
}

func (liveRunner) ListTimezones() []string {
	return listFromCommand("timedatectl", "list-timezones", []string{"UTC"})
}

func listFromCommand(name, verb string, fallback []string) []string {
	out, err := exec.Command(name, verb).Output()
	if err != nil {
		logrus.Warnf("%s %s failed, using fallback: %v", name, verb, err)
		return fallback
	}
	var items []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}

func (liveRunner) CreateUser(username, password string, groups []string, shell string) error {
	logrus.WithField("username", username).Info("creating user")

	args := []string{"-m", "-s", shell}
	if len(groups) > 0 {
		args = append(args, "-G", strings.Join(groups, ","))
	}
	args = append(args, username)

	if out, err := exec.Command("useradd", args...).CombinedOutput(); err != nil {
		return fmt.Errorf("useradd: %w: %s", err, strings.TrimSpace(string(out)))
	}

	// chpasswd reads "user:password" lines on stdin; the secret never
	// appears on an argv.
	cmd := exec.Command("chpasswd")
	cmd.Stdin = strings.NewReader(username + ":" + password + "\n")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("chpasswd: %w", err)
	}

	logrus.WithField("username", username).Info("user created")
	return nil
}

func (liveRunner) SetLocale(locale string) error {
	return runSetter("localectl", "set-locale", "LANG="+locale)
}

func (liveRunner) SetKeymap(keymap string) error {
	return runSetter("localectl", "set-keymap", keymap)
}

func (liveRunner) SetTimezone(timezone string) error {
	return runSetter("timedatectl", "set-timezone", timezone)
}

func runSetter(name string, args ...string) error {
	logrus.WithFields(logrus.Fields{"cmd": name, "args": args}).Info("applying setting")
	if out, err := exec.Command(name, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (liveRunner) RunAsUser(username string, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}
	logrus.WithFields(logrus.Fields{"username": username, "cmd": argv[0]}).Info("running command as user")

	cmd := exec.Command("su", "-l", username, "-c", shellJoin(argv))
	return captureCommand(cmd, nil)
}

func (liveRunner) RunAsUserSudo(username string, argv []string, password string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}
	logrus.WithFields(logrus.Fields{"username": username, "cmd": argv[0]}).Info("running sudo command as user")

	// sudo -S reads the password from stdin; -p '' suppresses the prompt so
	// it cannot leak into captured output. The password itself is piped
	// through the process stdin, never placed on a command line.
	cmd := exec.Command("su", "-l", username, "-c", "sudo -S -p '' -- "+shellJoin(argv))
	return captureCommand(cmd, strings.NewReader(password+"\n"))
}

func captureCommand(cmd *exec.Cmd, stdin io.Reader) (string, error) {
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := filterSudoPrompts(stderr.String())
		if diag == "" {
			diag = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("command failed: %s", diag)
	}
	return stdout.String(), nil
}

// filterSudoPrompts drops sudo's password prompt lines from diagnostics so
// they never reach the screen or the logs.
func filterSudoPrompts(s string) string {
	var kept []string
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if strings.Contains(line, "[sudo]") || strings.Contains(strings.ToLower(line), "password") {
			continue
		}
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// shellJoin quotes argv for `su -c`, which takes a single shell string.
func shellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\$`!*?[]{}()<>|&;~#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (r liveRunner) RemoveInitialSession() error {
	logrus.Info("removing initial_session from greetd config")

	data, err := os.ReadFile(r.greetdConfig)
	if err != nil {
		return fmt.Errorf("read greetd config: %w", err)
	}

	kept := removeInitialSessionBlock(string(data))
	if err := os.WriteFile(r.greetdConfig, []byte(kept), 0o644); err != nil {
		return fmt.Errorf("write greetd config: %w", err)
	}
	return nil
}

// removeInitialSessionBlock strips the [initial_session] table from a greetd
// config document, leaving every other line untouched.
func removeInitialSessionBlock(content string) string {
	var kept []string
	inBlock := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "[initial_session]":
			inBlock = true
		case inBlock && strings.HasPrefix(trimmed, "["):
			inBlock = false
			kept = append(kept, line)
		case !inBlock:
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// DryRunner satisfies Runner without touching the system: queries return
// canned data and every mutation succeeds as a no-op.
type DryRunner struct{}

func (DryRunner) CheckNetwork() bool { return true }

func (DryRunner) ListLocales() []string {
	return []string{
		"en_US.UTF-8", "en_GB.UTF-8", "de_DE.UTF-8", "fr_FR.UTF-8", "es_ES.UTF-8",
		"it_IT.UTF-8", "pt_BR.UTF-8", "ja_JP.UTF-8", "zh_CN.UTF-8", "ko_KR.UTF-8",
	}
}

func (DryRunner) ListKeymaps() []string {
	return []string{"us", "uk", "de", "fr", "es", "it", "pt", "ru", "jp", "cn", "dvorak", "colemak"}
}

func (DryRunner) ListTimezones() []string {
	return []string{
		"UTC", "America/New_York", "America/Chicago", "America/Denver",
		"America/Los_Angeles", "America/Sao_Paulo", "Europe/London", "Europe/Paris",
		"Europe/Berlin", "Asia/Tokyo", "Asia/Shanghai", "Asia/Kolkata", "Australia/Sydney",
	}
}

func (DryRunner) CreateUser(username, _ string, _ []string, _ string) error {
	logrus.WithField("username", username).Info("dry-run: skipping user creation")
	return nil
}

func (DryRunner) SetLocale(string) error   { return nil }
func (DryRunner) SetKeymap(string) error   { return nil }
func (DryRunner) SetTimezone(string) error { return nil }

func (DryRunner) RunAsUser(_ string, argv []string) (string, error) {
	logrus.WithField("cmd", argv).Info("dry-run: skipping command")
	return "", nil
}

func (DryRunner) RunAsUserSudo(_ string, argv []string, _ string) (string, error) {
	logrus.WithField("cmd", argv).Info("dry-run: skipping sudo command")
	return "", nil
}

func (DryRunner) RemoveInitialSession() error { return nil }
