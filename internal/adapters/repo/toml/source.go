package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/bnema/skport-checkin/internal/domain"
	"github.com/bnema/skport-checkin/internal/ports"
)

const (
	configName         = "config"
	configType         = "toml"
	accountsPathKey    = "accounts.path"
	accountsConfigDir  = ".skport"
	accountsConfigFile = "accounts.toml"
)

// Source reads the configured accounts from an accounts.toml file. The
// file is read on every List so edits take effect without a restart;
// the check-in tool never writes it.
type Source struct {
	accountsPath string
}

var _ ports.AccountSource = (*Source)(nil)

func NewSource(cfg *viper.Viper) (*Source, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, accountsConfigDir, accountsConfigFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, accountsConfigDir))
	cfg.SetDefault(accountsPathKey, defaultPath)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	accountsPath := cfg.GetString(accountsPathKey)
	if accountsPath == "" {
		return nil, errors.New("accounts path is empty")
	}
	accountsPath, err = filepath.Abs(accountsPath)
	if err != nil {
		return nil, fmt.Errorf("resolve accounts path: %w", err)
	}

	return &Source{accountsPath: filepath.Clean(accountsPath)}, nil
}

func (s *Source) List(ctx context.Context) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.accountsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read accounts file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode accounts file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return nil, err
	}
	file.applyDefaults()

	accounts := make([]domain.Account, 0, len(file.Accounts))
	for i, entry := range file.Accounts {
		if err := entry.validate(i); err != nil {
			return nil, err
		}

		name := entry.Name
		if name == "" {
			name = fmt.Sprintf("Account %d", i+1)
		}

		accounts = append(accounts, domain.Account{
			Name:       name,
			Token:      entry.Token,
			GameRoleID: entry.GameRoleID,
		})
	}

	return accounts, nil
}
