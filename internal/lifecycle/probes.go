package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// condaEnvList is the shape of `conda env list --json`.
type condaEnvList struct {
	Envs []string `json:"envs"`
}

// kernelspecList is the shape of `jupyter kernelspec list --json`.
type kernelspecList struct {
	Kernelspecs map[string]json.RawMessage `json:"kernelspecs"`
}

// parseEnvironments turns conda's prefix list into a set of names usable with -n.
// Prefixes under an envs/ directory are named by their last segment; the first
// prefix that is not is the root environment, "base". Other path-only
// environments have no name and are skipped.
func parseEnvironments(out string) (map[string]struct{}, error) {
	var list condaEnvList
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		return nil, fmt.Errorf("invalid conda env list output: %w", err)
	}
	names := make(map[string]struct{}, len(list.Envs))
	rootSeen := false
	for _, prefix := range list.Envs {
		prefix = filepath.Clean(filepath.FromSlash(prefix))
		if filepath.Base(filepath.Dir(prefix)) == "envs" {
			names[filepath.Base(prefix)] = struct{}{}
			continue
		}
		if !rootSeen {
			names["base"] = struct{}{}
			rootSeen = true
		}
	}
	return names, nil
}

func parseKernels(out string) (map[string]struct{}, error) {
	var list kernelspecList
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		return nil, fmt.Errorf("invalid kernelspec list output: %w", err)
	}
	names := make(map[string]struct{}, len(list.Kernelspecs))
	for name := range list.Kernelspecs {
		names[name] = struct{}{}
	}
	return names, nil
}

// environmentExists probes conda for env. Probe failures count as absent.
func (o *Orchestrator) environmentExists(ctx context.Context, env string) bool {
	names, err := o.listNames(ctx, listEnvironmentsCmd, parseEnvironments)
	if err != nil {
		o.logger.Warn("failed to list conda environments", zap.Error(err))
		return false
	}
	_, ok := names[env]
	return ok
}

// kernelExists probes jupyter for kernel. Probe failures count as absent.
func (o *Orchestrator) kernelExists(ctx context.Context, kernel string) bool {
	names, err := o.listNames(ctx, listKernelsCmd, parseKernels)
	if err != nil {
		o.logger.Warn("failed to list kernelspecs", zap.Error(err))
		return false
	}
	_, ok := names[kernel]
	return ok
}

func (o *Orchestrator) listNames(ctx context.Context, cmd string, parse func(string) (map[string]struct{}, error)) (map[string]struct{}, error) {
	res, err := o.run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return parse(res.Stdout)
}
