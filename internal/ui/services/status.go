package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Cyclone1070/kernelenv/internal/lifecycle"
)

// FormatStatus builds the markdown shown by the status command.
func FormatStatus(r lifecycle.StatusReport) string {
	var sb strings.Builder

	sb.WriteString("# Project status\n\n")
	sb.WriteString(fmt.Sprintf("Directory: `%s`\n\n", displayDir(r.Directory)))

	sb.WriteString("| Item | State |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Environment | %s |\n", presence(r.EnvironmentExists, "exists", "missing")))
	sb.WriteString(fmt.Sprintf("| Kernel | %s |\n", presence(r.KernelExists, "registered", "not registered")))
	sb.WriteString(fmt.Sprintf("| Manifest | %s |\n", presence(r.ManifestPresent, "present", "missing")))
	sb.WriteString(fmt.Sprintf("| Lock file | %s |\n", presence(r.LockPresent, "present", "missing")))
	sb.WriteString(fmt.Sprintf("| Config ignored | %s |\n", presence(r.ConfigIgnored, "yes", "no")))

	if len(r.Config) > 0 {
		keys := make([]string, 0, len(r.Config))
		for k := range r.Config {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\n## Config\n\n| Key | Value |\n|---|---|\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", k, escapeCell(r.Config[k])))
		}
	}

	if len(r.Missing) > 0 {
		sb.WriteString("\n**Missing keys:** " + strings.Join(r.Missing, ", ") + "\n")
	}

	return sb.String()
}

func presence(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

// displayDir shows the server root as "/".
func displayDir(dir string) string {
	if dir == "" {
		return "/"
	}
	return dir
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
