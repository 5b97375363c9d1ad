// Package manifest records what each generation run wrote, so repeated
// runs can be audited for drift (same inputs must give the same hashes).
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Artifact kinds.
const (
	KindPNG     = "png"
	KindICO     = "ico"
	KindIconset = "iconset"
	KindICNS    = "icns"
)

// Artifact is one written file.
type Artifact struct {
	Path   string
	Kind   string
	Bytes  int
	SHA256 string
}

// NewArtifact describes data written to path.
func NewArtifact(path, kind string, data []byte) Artifact {
	sum := sha256.Sum256(data)
	return Artifact{Path: path, Kind: kind, Bytes: len(data), SHA256: hex.EncodeToString(sum[:])}
}

// Run is one invocation of a generating command.
type Run struct {
	ID        int64
	Time      time.Time
	Command   string
	OutDir    string
	Artifacts []Artifact
}

// Store abstracts manifest storage.
type Store interface {
	// Record stores a run and its artifacts and returns the run ID.
	Record(run Run) (int64, error)
	// Runs returns the most recent runs first, without artifacts. 0 = all.
	Runs(limit int) ([]Run, error)
	// Artifacts returns the artifacts of one run in write order.
	Artifacts(runID int64) ([]Artifact, error)
	Clear() error
	Path() string
	Close() error
}
