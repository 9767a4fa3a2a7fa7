// Package incremental provides digest-based early skip of stub generation.
// When every generation input is byte-identical to the previous run and the
// previous output still exists, the compile stage can be skipped.
package incremental

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// InputSignature is the deterministic digest of one generation run's inputs.
type InputSignature struct {
	FileHashes map[string]string `json:"file_hashes"` // path -> content hash
	Flags      []string          `json:"flags"`       // generation-affecting options, sorted
	InputHash  string            `json:"input_hash"`  // hash of all above
}

// GenerationOptions flattens every generation-affecting setting that is not
// file content: include directories, the stub toggles, and verbatim compiler
// flags. Changing any of these must invalidate the previous run's signature
// even when the definition files themselves are untouched.
func GenerationOptions(includes []string, genClient, genServer bool, flags []string) []string {
	opts := make([]string, 0, len(includes)+len(flags)+2)
	for _, inc := range includes {
		opts = append(opts, "-I"+inc)
	}
	opts = append(opts, fmt.Sprintf("client=%t", genClient), fmt.Sprintf("server=%t", genServer))
	return append(opts, flags...)
}

// ComputeSignature hashes the given input files (definition files and the
// project manifest) together with the generation options.
func ComputeSignature(files []string, flags []string) (*InputSignature, error) {
	sig := &InputSignature{
		FileHashes: make(map[string]string, len(files)),
		Flags:      append([]string(nil), flags...),
	}
	sort.Strings(sig.Flags)

	for _, f := range files {
		hash, err := hashFile(f)
		if err != nil {
			return nil, fmt.Errorf("hash input %s: %w", f, err)
		}
		sig.FileHashes[f] = hash
	}

	hash, err := hashSignature(sig)
	if err != nil {
		return nil, err
	}
	sig.InputHash = hash
	return sig, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashSignature hashes the signature components in a stable order.
func hashSignature(sig *InputSignature) (string, error) {
	paths := make([]string, 0, len(sig.FileHashes))
	for p := range sig.FileHashes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	stable := struct {
		Paths  []string
		Hashes []string
		Flags  []string
	}{Paths: paths, Flags: sig.Flags}
	for _, p := range paths {
		stable.Hashes = append(stable.Hashes, sig.FileHashes[p])
	}

	data, err := json.Marshal(stable)
	if err != nil {
		return "", fmt.Errorf("marshal signature: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
