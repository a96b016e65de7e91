package envfile

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Environment is the typed view of a project's config file.
type Environment struct {
	PythonVersion     string `mapstructure:"PYTHON_VERSION"`
	EnvName           string `mapstructure:"ENV_NAME"`
	KernelName        string `mapstructure:"KERNEL_NAME"`
	KernelDisplayName string `mapstructure:"KERNEL_DISPLAY_NAME"`
	RegisterKernel    bool   `mapstructure:"REGISTER_KERNEL"`
}

// MissingKeys returns the keys from want that have no value in values, in order.
func MissingKeys(values map[string]string, want ...string) []string {
	var missing []string
	for _, k := range want {
		if values[k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

// Decode converts a raw config map into an Environment. Only the literal "true"
// enables REGISTER_KERNEL; unknown keys are ignored.
func Decode(values map[string]string) (Environment, error) {
	var env Environment
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: strictBoolHook,
		Result:     &env,
	})
	if err != nil {
		return Environment{}, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return Environment{}, &DecodeError{Cause: err}
	}
	return env, nil
}

func strictBoolHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	return data.(string) == "true", nil
}
