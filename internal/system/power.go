package system

import (
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Reboot restarts the machine. In dry-run mode it logs and succeeds without
// touching the system.
func Reboot(dryRun bool) error {
	if dryRun {
		logrus.Info("dry-run: skipping reboot")
		return nil
	}
	return runPowerCommand("reboot")
}

// Poweroff shuts the machine down, with the same dry-run behavior as Reboot.
func Poweroff(dryRun bool) error {
	if dryRun {
		logrus.Info("dry-run: skipping poweroff")
		return nil
	}
	return runPowerCommand("poweroff")
}

func runPowerCommand(verb string) error {
	logrus.WithField("verb", verb).Info("executing power command")
	if err := exec.Command("systemctl", verb).Run(); err != nil {
		return fmt.Errorf("systemctl %s: %w", verb, err)
	}
	return nil
}
