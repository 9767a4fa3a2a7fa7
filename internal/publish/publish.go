// Package publish assembles the extracted metadata and collected provenance
// into a fixed, named set of build-time constants and writes them where the
// application build can consume them.
package publish

import (
	"strings"

	"git.home.luguber.info/inful/buildprep/internal/manifest"
	"git.home.luguber.info/inful/buildprep/internal/provenance"
)

// Constant is one named build-time string constant.
type Constant struct {
	Name  string
	Value string
}

// Constants is the assembled, ordered constant set. It is built once and not
// mutated after publication.
type Constants []Constant

// Lookup returns the value for a constant name.
func (c Constants) Lookup(name string) (string, bool) {
	for _, k := range c {
		if k.Name == name {
			return k.Value, true
		}
	}
	return "", false
}

// Field identifiers, upper-cased and combined with the configured prefix to
// form constant names.
const (
	FieldProjectVersion        = "PROJECT_VERSION"
	FieldProjectName           = "PROJECT_NAME"
	FieldBuildTimestamp        = "BUILD_TIMESTAMP"
	FieldGitBranch             = "GIT_BRANCH"
	FieldGitCommit             = "GIT_COMMIT"
	FieldGitStatus             = "GIT_STATUS"
	FieldCompilerVersion       = "COMPILER_VERSION"
	FieldPackageManagerVersion = "PACKAGE_MANAGER_VERSION"
	FieldTargetTriple          = "TARGET_TRIPLE"
	FieldBuildMode             = "BUILD_MODE"
)

// Publish deterministically maps each metadata and provenance field to a
// named constant. It is pure and never fails; an all-sentinel record still
// produces a complete, well-formed constant set.
func Publish(prefix string, meta manifest.ProjectMetadata, rec provenance.Record) Constants {
	name := func(field string) string { return prefix + strings.ToUpper(field) }
	return Constants{
		{Name: name(FieldProjectVersion), Value: meta.Version},
		{Name: name(FieldProjectName), Value: meta.Name},
		{Name: name(FieldBuildTimestamp), Value: rec.BuildTimestamp},
		{Name: name(FieldGitBranch), Value: rec.GitBranch},
		{Name: name(FieldGitCommit), Value: rec.GitCommit},
		{Name: name(FieldGitStatus), Value: rec.GitStatus},
		{Name: name(FieldCompilerVersion), Value: rec.CompilerVersion},
		{Name: name(FieldPackageManagerVersion), Value: rec.PackageManagerVersion},
		{Name: name(FieldTargetTriple), Value: rec.TargetTriple},
		{Name: name(FieldBuildMode), Value: rec.BuildMode},
	}
}
