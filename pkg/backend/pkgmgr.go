package backend

import (
	"fmt"
	"strings"

	"github.com/z9wen/toolsss/pkg/runner"
)

// PackageManager defines the subset of OS package management needed for
// native installs.
type PackageManager interface {
	Update() error
	Install(packages ...string) error
}

// DetectPackageManager finds a usable package manager on the local host.
func DetectPackageManager(run runner.Runner) (PackageManager, error) {
	candidates := []struct {
		binary string
		build  func() PackageManager
	}{
		{"apt-get", func() PackageManager { return &aptManager{run: run} }},
		{"dnf", func() PackageManager { return &dnfManager{run: run} }},
		{"yum", func() PackageManager { return &yumManager{run: run} }},
	}

	for _, c := range candidates {
		if _, err := run.Run(fmt.Sprintf("command -v %s", c.binary)); err == nil {
			return c.build(), nil
		}
	}
	return nil, fmt.Errorf("no supported package manager found (apt-get, dnf, yum)")
}

type aptManager struct {
	run runner.Runner
}

func (a *aptManager) Update() error {
	_, err := a.run.Run("DEBIAN_FRONTEND=noninteractive apt-get update -y")
	return err
}

func (a *aptManager) Install(packages ...string) error {
	if len(packages) == 0 {
		return nil
	}
	cmd := fmt.Sprintf("DEBIAN_FRONTEND=noninteractive apt-get install -y %s", strings.Join(packages, " "))
	_, err := a.run.Run(cmd)
	return err
}

type dnfManager struct {
	run runner.Runner
}

func (d *dnfManager) Update() error {
	_, err := d.run.Run("dnf check-update -y || true")
	return err
}

func (d *dnfManager) Install(packages ...string) error {
	if len(packages) == 0 {
		return nil
	}
	_, err := d.run.Run(fmt.Sprintf("dnf install -y %s", strings.Join(packages, " ")))
	return err
}

type yumManager struct {
	run runner.Runner
}

func (y *yumManager) Update() error {
	_, err := y.run.Run("yum check-update -y || true")
	return err
}

func (y *yumManager) Install(packages ...string) error {
	if len(packages) == 0 {
		return nil
	}
	_, err := y.run.Run(fmt.Sprintf("yum install -y %s", strings.Join(packages, " ")))
	return err
}
