package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/npcflow/types"
)

// Load reads and parses a conversation asset from path.
func Load(path string) (*types.Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Database from a YAML document. Only the structural shape
// is checked here: semantic problems such as a dangling next-node id or an
// unresolvable start node stay latent until the conversation is started,
// matching the engine's degrade-at-runtime contract.
func Parse(data []byte) (*types.Database, error) {
	var db types.Database
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("failed to parse content file: %w", err)
	}
	return &db, nil
}
