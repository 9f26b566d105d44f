package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Accounts []accountSchema `toml:"accounts"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported accounts schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type accountSchema struct {
	Name       string `toml:"name"`
	Token      string `toml:"token"`
	GameRoleID string `toml:"game_role_id"`
}

func (s accountSchema) validate(index int) error {
	if s.Token == "" {
		return fmt.Errorf("account %d: token is required", index)
	}
	if s.GameRoleID == "" {
		return fmt.Errorf("account %d: game_role_id is required", index)
	}

	return nil
}
