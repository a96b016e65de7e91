package lifecycle

import (
	"context"

	"github.com/Cyclone1070/kernelenv/internal/envfile"
)

// StatusReport describes what exists for the current project.
type StatusReport struct {
	Directory         string
	Config            map[string]string
	Missing           []string
	ManifestPresent   bool
	LockPresent       bool
	ConfigIgnored     bool
	EnvironmentExists bool
	KernelExists      bool
}

// Status inspects the project without changing anything. Probes run only for names
// the config provides.
func (o *Orchestrator) Status(ctx context.Context) (StatusReport, error) {
	if err := ctx.Err(); err != nil {
		return StatusReport{}, err
	}
	files := o.store.Files()
	values := o.store.ReadConfig()

	report := StatusReport{
		Directory:       o.resolver.ResolveDirectory(),
		Config:          values,
		ManifestPresent: o.store.Exists(files.Manifest),
		LockPresent:     o.store.Exists(o.opts.LockFile),
		ConfigIgnored:   o.store.IsIgnored(files.Config),
		Missing: envfile.MissingKeys(values,
			envfile.KeyPythonVersion, envfile.KeyEnvName, envfile.KeyKernelName, envfile.KeyKernelDisplayName),
	}
	if env := values[envfile.KeyEnvName]; env != "" {
		report.EnvironmentExists = o.environmentExists(ctx, env)
	}
	if kernel := values[envfile.KeyKernelName]; kernel != "" {
		report.KernelExists = o.kernelExists(ctx, kernel)
	}
	return report, nil
}
