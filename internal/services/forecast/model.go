package forecast

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"KankoLens/internal/domain/models"
	domsvc "KankoLens/internal/domain/service"
)

// LoadArtifact reads a trained linear model from <dir>/<name>_model.json.
// A missing file is reported as ErrModelUnavailable so callers select
// the skeleton strategy once at startup rather than re-probing per
// request.
func LoadArtifact(dir, name string) (*models.ModelArtifact, error) {
	path := filepath.Join(dir, name+"_model.json")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, path)
		}
		return nil, fmt.Errorf("read model artifact %s: %w", path, err)
	}

	var artifact models.ModelArtifact
	if err := json.Unmarshal(b, &artifact); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}
	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &artifact, nil
}

// LinearPredictor scores snapshots with a trained linear model.
type LinearPredictor struct {
	artifact *models.ModelArtifact
}

// NewLinearPredictor checks the artifact's feature list against the
// snapshot's fixed feature set. A mismatch is a typed error caught at
// load time, never silently ignored at scoring time.
func NewLinearPredictor(artifact *models.ModelArtifact) (*LinearPredictor, error) {
	expected := models.FeatureNames()
	if len(artifact.Features) != len(expected) {
		return nil, fmt.Errorf("%w: artifact has %d features, snapshot has %d",
			ErrFeatureMismatch, len(artifact.Features), len(expected))
	}
	for i, name := range expected {
		if artifact.Features[i] != name {
			return nil, fmt.Errorf("%w: feature %d is %q, want %q",
				ErrFeatureMismatch, i, artifact.Features[i], name)
		}
	}
	return &LinearPredictor{artifact: artifact}, nil
}

func (p *LinearPredictor) Version() string { return p.artifact.Version }

func (p *LinearPredictor) Predict(snapshot *models.FeatureSnapshot) (float64, error) {
	vec := snapshot.Vector()
	if len(vec) != len(p.artifact.Weights) {
		return 0, fmt.Errorf("%w: %d inputs for %d weights", ErrFeatureMismatch, len(vec), len(p.artifact.Weights))
	}
	sum := p.artifact.Intercept
	for i, w := range p.artifact.Weights {
		sum += w * vec[i]
	}
	return sum, nil
}

var _ domsvc.GrowthPredictor = (*LinearPredictor)(nil)
