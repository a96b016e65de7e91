package lifecycle

import (
	"fmt"

	"github.com/Cyclone1070/kernelenv/internal/command"
)

// Shell command lines issued by the lifecycle operations.

const (
	listEnvironmentsCmd = "conda env list --json"
	listKernelsCmd      = "jupyter kernelspec list --json"
)

// kernelPackages are upgraded on every create so the environment can host a kernel
// and compile lock files.
const kernelPackages = "pip pip-tools ipykernel"

func createEnvironmentCmd(env, pythonVersion string) string {
	return fmt.Sprintf("conda create -n %s python=%s -y", command.Quote(env), command.Quote(pythonVersion))
}

func upgradePackagesCmd(env string) string {
	return fmt.Sprintf("conda run -n %s pip install --upgrade %s", command.Quote(env), kernelPackages)
}

func registerKernelCmd(env, kernel, displayName string) string {
	return fmt.Sprintf("conda run -n %s python -m ipykernel install --user --name %s --display-name %s",
		command.Quote(env), command.Quote(kernel), command.Quote(displayName))
}

func compileLockCmd(dir, env, manifest, lock string) string {
	return fmt.Sprintf("%sconda run -n %s pip-compile %s -o %s",
		cdPrefix(dir), command.Quote(env), command.Quote(manifest), command.Quote(lock))
}

func syncLockCmd(dir, env, lock string) string {
	return fmt.Sprintf("%sconda run -n %s pip-sync %s", cdPrefix(dir), command.Quote(env), command.Quote(lock))
}

func removeKernelCmd(kernel string) string {
	return fmt.Sprintf("jupyter kernelspec remove %s -f", command.Quote(kernel))
}

func removeEnvironmentCmd(env string) string {
	return fmt.Sprintf("conda env remove -n %s -y", command.Quote(env))
}

// cdPrefix is empty for the server root, where commands already run.
func cdPrefix(dir string) string {
	if dir == "" {
		return ""
	}
	return "cd " + command.Quote(dir) + " && "
}
