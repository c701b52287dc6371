// Package circuits holds infrastructure shared across the four
// proof circuits (utxo, mint, burn, aggregator): fetching and caching
// their compiled constraint systems and proving/verification keys.
package circuits

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/shielded-rollup/settlement/log"
)

// CheckHashes gates whether a loaded artifact's content is verified
// against its expected hash. Disabled via the ROLLUP_CHECK_HASHES env
// var, for local development against artifacts built without a fixed
// hash yet.
var CheckHashes = true

// BaseDir is where the artifact cache lives, defaulting to
// ROLLUP_ARTIFACTS_DIR or a subdirectory of the user's cache dir.
var BaseDir string

func init() {
	if v := os.Getenv("ROLLUP_CHECK_HASHES"); v != "" {
		if strings.ToLower(v) == "false" || v == "0" {
			CheckHashes = false
		}
	}
	if dir := os.Getenv("ROLLUP_ARTIFACTS_DIR"); dir != "" {
		BaseDir = dir
	} else {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			log.Warnf("unable to access user home directory, using temporary directory: %v", err)
			BaseDir = filepath.Join(os.TempDir(), "rollup-artifacts")
		} else {
			BaseDir = filepath.Join(home, ".cache", "rollup-artifacts")
		}
	}
	if err := os.MkdirAll(BaseDir, 0o755); err != nil {
		log.Errorf("failed to create BaseDir %s: %v", BaseDir, err)
	}
}

// Artifact holds a remote URL, the content's expected hash and the
// content itself once loaded.
type Artifact struct {
	RemoteURL string
	Hash      []byte
	Content   []byte
}

// Load fills the artifact's Content, reading it from the local cache
// if present or downloading it from RemoteURL otherwise.
func (a *Artifact) Load(ctx context.Context) error {
	if len(a.Content) != 0 {
		return nil
	}
	if len(a.Hash) == 0 {
		return fmt.Errorf("circuits: artifact hash not provided")
	}
	content, err := loadCached(a.Hash)
	if err != nil {
		return err
	}
	if content != nil {
		a.Content = content
		return nil
	}
	if a.RemoteURL == "" {
		return fmt.Errorf("circuits: artifact not cached and no remote url provided")
	}
	if err := downloadAndStore(ctx, a.Hash, a.RemoteURL); err != nil {
		return err
	}
	content, err = loadCached(a.Hash)
	if err != nil {
		return err
	}
	if content == nil {
		return fmt.Errorf("circuits: artifact downloaded but not found in cache")
	}
	a.Content = content
	return nil
}

// CircuitArtifacts bundles one circuit's compiled constraint system,
// proving key, and verification key.
type CircuitArtifacts struct {
	CircuitDefinition *Artifact
	ProvingKey        *Artifact
	VerifyingKey      *Artifact
}

// NewCircuitArtifacts bundles the three artifacts of a circuit.
func NewCircuitArtifacts(circuit, provingKey, verifyingKey *Artifact) *CircuitArtifacts {
	return &CircuitArtifacts{CircuitDefinition: circuit, ProvingKey: provingKey, VerifyingKey: verifyingKey}
}

// LoadAll loads every non-nil artifact in ca.
func (ca *CircuitArtifacts) LoadAll(ctx context.Context) error {
	for name, a := range map[string]*Artifact{
		"circuit definition": ca.CircuitDefinition,
		"proving key":        ca.ProvingKey,
		"verifying key":      ca.VerifyingKey,
	} {
		if a == nil {
			continue
		}
		if err := a.Load(ctx); err != nil {
			return fmt.Errorf("circuits: load %s: %w", name, err)
		}
	}
	return nil
}

func loadCached(hash []byte) ([]byte, error) {
	path := filepath.Join(BaseDir, hex.EncodeToString(hash))
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("circuits: read cached file %s: %w", path, err)
	}
	if CheckHashes {
		sum := sha256.Sum256(content)
		if !bytes.Equal(sum[:], hash) {
			return nil, fmt.Errorf("circuits: hash mismatch for %s: expected %x, got %x", path, hash, sum)
		}
	}
	return content, nil
}

func downloadAndStore(ctx context.Context, expectedHash []byte, fileURL string) error {
	if _, err := url.Parse(fileURL); err != nil {
		return fmt.Errorf("circuits: parse artifact url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("circuits: build artifact request: %w", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("circuits: download artifact: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("circuits: download artifact %s: http status %d", fileURL, res.StatusCode)
	}

	hasher := sha256.New()
	body, err := io.ReadAll(io.TeeReader(res.Body, hasher))
	if err != nil {
		return fmt.Errorf("circuits: read artifact body: %w", err)
	}
	if CheckHashes {
		sum := hasher.Sum(nil)
		if !bytes.Equal(sum, expectedHash) {
			return fmt.Errorf("circuits: hash mismatch: expected %x, got %x", expectedHash, sum)
		}
	}
	path := filepath.Join(BaseDir, hex.EncodeToString(expectedHash))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("circuits: store artifact %s: %w", path, err)
	}
	log.Debugw("artifact downloaded", "url", fileURL, "bytes", len(body))
	return nil
}
