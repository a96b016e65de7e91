package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Cyclone1070/kernelenv/internal/command"
	"github.com/Cyclone1070/kernelenv/internal/envfile"
	"github.com/Cyclone1070/kernelenv/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	noEnvironments = `{"envs": ["/opt/conda"]}`
	noKernels      = `{"kernelspecs": {}}`
)

// scriptedRunner answers commands from a table and records every command it sees.
// Unscripted commands succeed with empty output; list probes default to empty lists.
type scriptedRunner struct {
	mu        sync.Mutex
	responses map[string]*command.Result
	errs      map[string]error
	calls     []string
}

func newScriptedRunner() *scriptedRunner {
	return &scriptedRunner{
		responses: map[string]*command.Result{
			listEnvironmentsCmd: {Stdout: noEnvironments},
			listKernelsCmd:      {Stdout: noKernels},
		},
		errs: map[string]error{},
	}
}

func (r *scriptedRunner) Run(ctx context.Context, cmd string) (*command.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cmd)
	if err := r.errs[cmd]; err != nil {
		return nil, err
	}
	if res, ok := r.responses[cmd]; ok {
		return res, nil
	}
	return &command.Result{}, nil
}

// mutating returns the recorded commands minus the list probes.
func (r *scriptedRunner) mutating() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if c == listEnvironmentsCmd || c == listKernelsCmd {
			continue
		}
		out = append(out, c)
	}
	return out
}

type fixedResolver struct {
	dir string
}

func (r fixedResolver) ResolveDirectory() string   { return r.dir }
func (r fixedResolver) ResolveProjectName() string { return filepath.Base(r.dir) }

type fixture struct {
	dir    string
	runner *scriptedRunner
	orch   *Orchestrator
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "demo")
	require.NoError(t, os.Mkdir(dir, 0o755))
	resolver := fixedResolver{dir: dir}
	store := envfile.NewStore(fsutil.NewOSFileSystem(), resolver, envfile.DefaultFiles(), nil)
	runner := newScriptedRunner()
	return &fixture{
		dir:    dir,
		runner: runner,
		orch:   NewOrchestrator(store, resolver, runner, opts, nil),
	}
}

func (f *fixture) writeConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, ".env"), []byte(content), 0o644))
}

const fullConfig = "PYTHON_VERSION=3.10\nENV_NAME=conda-demo\nKERNEL_NAME=python-demo\nKERNEL_DISPLAY_NAME=Python (demo)\nREGISTER_KERNEL=true\n"

// --- CREATE ---

func TestCreateKernel_FreshProject_RunsEachStepOnce(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	ok := f.orch.CreateKernel(context.Background(), "3.9")

	require.True(t, ok)
	assert.Equal(t, []string{
		"conda create -n conda-demo python=3.9 -y",
		"conda run -n conda-demo pip install --upgrade pip pip-tools ipykernel",
		"conda run -n conda-demo python -m ipykernel install --user --name python-demo --display-name 'Python (demo)'",
	}, f.runner.mutating())

	data, err := os.ReadFile(filepath.Join(f.dir, ".env"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "PYTHON_VERSION=3.9\n")

	ignore, err := os.ReadFile(filepath.Join(f.dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, ".env\n", string(ignore))
}

func TestCreateKernel_ExistingEnvironmentAndKernel_OnlyUpgrades(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)
	f.runner.responses[listEnvironmentsCmd] = &command.Result{Stdout: `{"envs": ["/opt/conda", "/opt/conda/envs/conda-demo"]}`}
	f.runner.responses[listKernelsCmd] = &command.Result{Stdout: `{"kernelspecs": {"python-demo": {}}}`}

	ok := f.orch.CreateKernel(context.Background(), "3.9")

	require.True(t, ok)
	assert.Equal(t, []string{
		"conda run -n conda-demo pip install --upgrade pip pip-tools ipykernel",
	}, f.runner.mutating())
}

func TestCreateKernel_ExactMatchOnly(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)
	// A longer name that contains the wanted one must not count.
	f.runner.responses[listEnvironmentsCmd] = &command.Result{Stdout: `{"envs": ["/opt/conda/envs/conda-demo-old"]}`}

	require.True(t, f.orch.CreateKernel(context.Background(), ""))

	assert.Contains(t, f.runner.mutating(), "conda create -n conda-demo python=3.10 -y")
}

func TestCreateKernel_RegisterDisabled_SkipsKernel(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, "PYTHON_VERSION=3.10\nENV_NAME=conda-demo\nKERNEL_NAME=python-demo\nKERNEL_DISPLAY_NAME=Demo\nREGISTER_KERNEL=yes\n")

	require.True(t, f.orch.CreateKernel(context.Background(), ""))

	for _, c := range f.runner.calls {
		assert.NotEqual(t, listKernelsCmd, c)
	}
	assert.Len(t, f.runner.mutating(), 2)
}

func TestCreateKernel_MissingEnvName_RunsNothing(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, "PYTHON_VERSION=3.10\nKERNEL_NAME=python-demo\nKERNEL_DISPLAY_NAME=Demo\n")

	ok := f.orch.CreateKernel(context.Background(), "3.9")

	assert.False(t, ok)
	assert.Empty(t, f.runner.calls)
}

func TestCreateKernel_CommandFailure_StopsSequence(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)
	create := "conda create -n conda-demo python=3.10 -y"
	f.runner.responses[create] = &command.Result{ExitCode: 1, Stderr: "CondaHTTPError"}

	ok := f.orch.CreateKernel(context.Background(), "")

	assert.False(t, ok)
	assert.Equal(t, []string{create}, f.runner.mutating())
}

func TestCreateKernel_ProbeFailure_TreatedAsAbsent(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)
	f.runner.errs[listEnvironmentsCmd] = errors.New("connection refused")
	f.runner.responses[listKernelsCmd] = &command.Result{Stdout: "not json"}

	require.True(t, f.orch.CreateKernel(context.Background(), ""))

	assert.Len(t, f.runner.mutating(), 3)
}

func TestCreateKernel_ExistingConfig_NotOverwritten(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)

	require.True(t, f.orch.CreateKernel(context.Background(), "3.12"))

	data, err := os.ReadFile(filepath.Join(f.dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, fullConfig, string(data))
}

// --- INSTALL ---

func TestRunDependencyInstall_CompilesThenSyncs(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)

	ok := f.orch.RunDependencyInstall(context.Background())

	require.True(t, ok)
	assert.Equal(t, []string{
		compileLockCmd(f.dir, "conda-demo", "requirements.in", "requirements.txt"),
		syncLockCmd(f.dir, "conda-demo", "requirements.txt"),
	}, f.runner.calls)
	_, err := os.Stat(filepath.Join(f.dir, "requirements.in"))
	assert.NoError(t, err)
}

func TestRunDependencyInstall_MissingEnvName_Fails(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	assert.False(t, f.orch.RunDependencyInstall(context.Background()))
	assert.Empty(t, f.runner.calls)
	// The manifest is still scaffolded before the config check.
	_, err := os.Stat(filepath.Join(f.dir, "requirements.in"))
	assert.NoError(t, err)
}

func TestRunDependencyInstall_CompileFailure_SkipsSync(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)
	compile := compileLockCmd(f.dir, "conda-demo", "requirements.in", "requirements.txt")
	f.runner.responses[compile] = &command.Result{ExitCode: 2}

	assert.False(t, f.orch.RunDependencyInstall(context.Background()))
	assert.Equal(t, []string{compile}, f.runner.calls)
}

// --- DELETE ---

func TestDeleteKernel_KernelAbsent_Succeeds(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)

	assert.True(t, f.orch.DeleteKernel(context.Background(), false))
	assert.Empty(t, f.runner.mutating())
}

func TestDeleteKernel_RemovesKernelAndEnvironment(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)
	f.runner.responses[listEnvironmentsCmd] = &command.Result{Stdout: `{"envs": ["/opt/conda", "/opt/conda/envs/conda-demo"]}`}
	f.runner.responses[listKernelsCmd] = &command.Result{Stdout: `{"kernelspecs": {"python-demo": {}}}`}

	assert.True(t, f.orch.DeleteKernel(context.Background(), true))
	assert.Equal(t, []string{
		"jupyter kernelspec remove python-demo -f",
		"conda env remove -n conda-demo -y",
	}, f.runner.mutating())
}

func TestDeleteKernel_KernelOnly_LeavesEnvironment(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)
	f.runner.responses[listEnvironmentsCmd] = &command.Result{Stdout: `{"envs": ["/opt/conda/envs/conda-demo"]}`}
	f.runner.responses[listKernelsCmd] = &command.Result{Stdout: `{"kernelspecs": {"python-demo": {}}}`}

	assert.True(t, f.orch.DeleteKernel(context.Background(), false))
	assert.Equal(t, []string{"jupyter kernelspec remove python-demo -f"}, f.runner.mutating())
}

func TestDeleteKernel_MissingKernelName_Fails(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, "ENV_NAME=conda-demo\n")

	assert.False(t, f.orch.DeleteKernel(context.Background(), true))
	assert.Empty(t, f.runner.calls)
}

// --- RESET ---

func TestResetKernel_DeletesThenRecreates(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)
	f.runner.responses[listEnvironmentsCmd] = &command.Result{Stdout: `{"envs": ["/opt/conda/envs/conda-demo"]}`}

	require.True(t, f.orch.ResetKernel(context.Background()))

	got := f.runner.mutating()
	require.Len(t, got, 3)
	assert.Equal(t, "conda env remove -n conda-demo -y", got[0])
	// The scripted probe still lists the environment, so create is skipped.
	assert.Equal(t, "conda run -n conda-demo pip install --upgrade pip pip-tools ipykernel", got[1])
}

func TestResetKernel_MissingVersion_Fails(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, "ENV_NAME=conda-demo\nKERNEL_NAME=python-demo\n")

	assert.False(t, f.orch.ResetKernel(context.Background()))
	assert.Empty(t, f.runner.calls)
}

func TestResetKernel_Policies(t *testing.T) {
	remove := "jupyter kernelspec remove python-demo -f"

	tests := []struct {
		name       string
		policy     string
		wantOK     bool
		wantCreate bool
	}{
		{"Continue Recreates After Failed Delete", ResetContinue, true, true},
		{"Abort Stops After Failed Delete", ResetAbort, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.ResetPolicy = tt.policy
			f := newFixture(t, opts)
			f.writeConfig(t, fullConfig)
			f.runner.responses[listKernelsCmd] = &command.Result{Stdout: `{"kernelspecs": {"python-demo": {}}}`}
			f.runner.responses[remove] = &command.Result{ExitCode: 1, Stderr: "No such kernel"}

			assert.Equal(t, tt.wantOK, f.orch.ResetKernel(context.Background()))
			assert.Equal(t, tt.wantCreate, contains(f.runner.mutating(), "conda create -n conda-demo python=3.10 -y"))
		})
	}
}

// --- MISC ---

func TestOperations_CancelledContext_Fail(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.writeConfig(t, fullConfig)

	unlock, err := f.orch.locks.Lock(context.Background(), f.dir)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, f.orch.DeleteKernel(ctx, false))
	assert.Empty(t, f.runner.calls)
}

func TestRun_NonZeroExit_ReturnsCommandFailedError(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.runner.responses["false"] = &command.Result{ExitCode: 3, Stderr: "first\nlast reason"}

	_, err := f.orch.run(context.Background(), "false")

	var cfe *CommandFailedError
	require.ErrorAs(t, err, &cfe)
	assert.Equal(t, 3, cfe.ExitCode)
	assert.Contains(t, err.Error(), "last reason")
	assert.NotContains(t, err.Error(), "first")
}

func TestNewOrchestrator_NilDependencies_Panic(t *testing.T) {
	store := envfile.NewStore(fsutil.NewOSFileSystem(), fixedResolver{dir: "/tmp"}, envfile.DefaultFiles(), nil)
	assert.Panics(t, func() { NewOrchestrator(nil, fixedResolver{}, newScriptedRunner(), Options{}, nil) })
	assert.Panics(t, func() { NewOrchestrator(store, nil, newScriptedRunner(), Options{}, nil) })
	assert.Panics(t, func() { NewOrchestrator(store, fixedResolver{}, nil, Options{}, nil) })
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
