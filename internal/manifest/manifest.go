package manifest

import (
	"docregistry/internal/models"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const pkg = "manifest/"

// FileName is the optional per-corpus manifest at the corpus root.
const FileName = ".docregistry.yml"

type Manifest struct {
	Policy models.CorpusPolicy
	Ignore []string
}

type yamlManifest struct {
	RuleSuffix     string   `yaml:"rule_suffix"`
	IndexName      string   `yaml:"index_name"`
	Ignore         []string `yaml:"ignore"`
	DisabledChecks []string `yaml:"disabled_checks"`
}

func Default() Manifest {
	return Manifest{Policy: models.DefaultPolicy()}
}

// Load reads the manifest at root. A missing file is not an error: the
// defaults apply. Unknown keys and unknown check codes are errors.
func Load(root string) (Manifest, error) {
	op := pkg + "Load"

	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Manifest{}, fmt.Errorf("%s: %w", op, err)
	}

	m, err := parse(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

func parse(data []byte) (Manifest, error) {
	var raw yamlManifest

	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)

	if err := dec.Decode(&raw); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", models.ErrInvalidManifest, err)
	}

	m := Default()

	if raw.RuleSuffix != "" {
		if !strings.HasSuffix(raw.RuleSuffix, ".md") {
			return Manifest{}, fmt.Errorf("%w: rule_suffix must end with .md", models.ErrInvalidManifest)
		}
		m.Policy.RuleSuffix = raw.RuleSuffix
	}

	if raw.IndexName != "" {
		m.Policy.IndexName = raw.IndexName
	}

	m.Ignore = raw.Ignore

	for _, code := range raw.DisabledChecks {
		if !models.IsCheckCode(code) {
			return Manifest{}, fmt.Errorf("%w: unknown check %q", models.ErrInvalidManifest, code)
		}
		m.Policy.DisabledChecks[code] = true
	}

	return m, nil
}

// Ignored matches rel against the manifest ignore patterns. A pattern
// ending in "/**" ignores the whole subtree; anything else is a
// path.Match glob against the full rel path.
func (m Manifest) Ignored(rel string) bool {
	for _, pattern := range m.Ignore {
		if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
			if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
				return true
			}
			continue
		}

		if matched, err := path.Match(pattern, rel); err == nil && matched {
			return true
		}
	}

	return false
}
