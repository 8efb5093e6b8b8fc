// Package deps checks that the external binaries the render pipeline
// shells out to are actually reachable before the server starts taking
// work.
package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type DependencyStatus string

const (
	DependencyStatusOK      DependencyStatus = "ok"
	DependencyStatusMissing DependencyStatus = "missing"
	DependencyStatusError   DependencyStatus = "error"
)

type DependencySource string

const (
	DependencySourceConfigured DependencySource = "configured"
	DependencySourceLookPath   DependencySource = "lookpath"
)

// DependencySpec describes one external binary. ConfiguredPath comes
// from config and wins over PATH lookup when set to something other
// than the bare command name.
type DependencySpec struct {
	Name           string
	Command        string
	ConfiguredPath string
	Hint           string
}

type DependencyState struct {
	DependencySpec
	Status       DependencyStatus
	Source       DependencySource
	ResolvedPath string
	Error        string
}

// PathResolver resolves dependency specs to absolute paths. The lookup
// functions are fields so tests can run without touching the real PATH.
type PathResolver struct {
	LookPath func(file string) (string, error)
	AbsPath  func(path string) (string, error)
	Stat     func(name string) (os.FileInfo, error)
}

func NewPathResolver() PathResolver {
	return PathResolver{
		LookPath: exec.LookPath,
		AbsPath:  filepath.Abs,
		Stat:     os.Stat,
	}
}

func (r PathResolver) Resolve(spec DependencySpec) DependencyState {
	state := DependencyState{DependencySpec: spec}

	configured := strings.TrimSpace(spec.ConfiguredPath)
	if configured != "" && configured != spec.Command {
		resolvedPath, err := r.resolveConfiguredPath(configured)
		if err == nil {
			state.Status = DependencyStatusOK
			state.Source = DependencySourceConfigured
			state.ResolvedPath = resolvedPath
			return state
		}
		return state.withError(err)
	}

	resolvedPath, err := r.LookPath(spec.Command)
	if err == nil {
		state.Status = DependencyStatusOK
		state.Source = DependencySourceLookPath
		state.ResolvedPath = resolvedPath
		return state
	}
	return state.withError(err)
}

func (s DependencyState) withError(err error) DependencyState {
	s.Error = err.Error()
	if isMissingPathError(err) {
		s.Status = DependencyStatusMissing
		return s
	}
	s.Status = DependencyStatusError
	return s
}

func (r PathResolver) resolveConfiguredPath(configuredPath string) (string, error) {
	if resolvedPath, err := r.LookPath(configuredPath); err == nil {
		return resolvedPath, nil
	}

	absPath, err := r.AbsPath(configuredPath)
	if err != nil {
		return "", err
	}
	if _, err = r.Stat(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// BuildDependencyInventory lists the binaries the pipeline needs. Both
// are required: ffprobe gates uploads, ffmpeg does every render.
func BuildDependencyInventory(ffmpegPath, ffprobePath string) []DependencySpec {
	return []DependencySpec{
		{
			Name:           "ffmpeg",
			Command:        "ffmpeg",
			ConfiguredPath: ffmpegPath,
			Hint:           "Required for audio extraction and GIF rendering.",
		},
		{
			Name:           "ffprobe",
			Command:        "ffprobe",
			ConfiguredPath: ffprobePath,
			Hint:           "Required for media metadata detection on upload.",
		},
	}
}

func ResolveDependencyStates(specs []DependencySpec, resolver PathResolver) []DependencyState {
	resolved := make([]DependencyState, 0, len(specs))
	for _, spec := range specs {
		resolved = append(resolved, resolver.Resolve(spec))
	}
	return resolved
}

// CheckDependencies resolves the inventory and returns an error naming
// every binary that could not be found.
func CheckDependencies(ffmpegPath, ffprobePath string) ([]DependencyState, error) {
	states := ResolveDependencyStates(BuildDependencyInventory(ffmpegPath, ffprobePath), NewPathResolver())

	var missing []string
	for _, state := range states {
		if state.Status != DependencyStatusOK {
			missing = append(missing, state.Name)
		}
	}
	if len(missing) > 0 {
		return states, fmt.Errorf("required binaries unavailable: %s", strings.Join(missing, ", "))
	}
	return states, nil
}

func FormatDependencyReport(states []DependencyState) string {
	if len(states) == 0 {
		return "No dependencies to diagnose."
	}

	var builder strings.Builder
	builder.WriteString("Dependency status")

	for _, state := range states {
		resolvedPath := strings.TrimSpace(state.ResolvedPath)
		if resolvedPath == "" {
			resolvedPath = "unknown"
		}

		source := strings.TrimSpace(string(state.Source))
		if source == "" {
			source = "n/a"
		}

		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("- %s: %s | path=%s | source=%s", state.Name, state.Status, resolvedPath, source))
		if state.Error != "" {
			builder.WriteString("\n")
			builder.WriteString("  error: ")
			builder.WriteString(state.Error)
		}
		if state.Hint != "" {
			builder.WriteString("\n")
			builder.WriteString("  hint: ")
			builder.WriteString(state.Hint)
		}
	}

	return builder.String()
}

func isMissingPathError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
		return true
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		if errors.Is(pathErr.Err, os.ErrNotExist) {
			return true
		}
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		if errors.Is(execErr.Err, exec.ErrNotFound) {
			return true
		}
	}

	message := strings.ToLower(err.Error())
	return strings.Contains(message, "not found") || strings.Contains(message, "cannot find")
}
