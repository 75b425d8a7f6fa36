package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Round maps a counselling round name to its cutoff source file.
type Round struct {
	Name string `mapstructure:"name"`
	File string `mapstructure:"file"`
}

// RoundsConfig lists the rounds to load, in order. The first entry is the
// default round for queries that do not name one.
type RoundsConfig struct {
	Rounds []Round `mapstructure:"rounds"`
}

func DefaultRoundsConfig() RoundsConfig {
	return RoundsConfig{
		Rounds: []Round{
			{Name: "Round 1", File: "Final_Data.csv"},
			{Name: "Round 2", File: "Final_Data_R2.csv"},
		},
	}
}

// LoadRounds reads rounds.yml from the data directory, falling back to the
// coded defaults when no file is present.
func LoadRounds(cfg Config) (RoundsConfig, error) {
	v := viper.New()

	v.SetConfigName("rounds")
	v.SetConfigType("yml")
	v.AddConfigPath(cfg.DataDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("CETPREDICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return RoundsConfig{}, err
		}
		return DefaultRoundsConfig(), nil
	}

	var rounds RoundsConfig
	if err := v.Unmarshal(&rounds); err != nil {
		return RoundsConfig{}, err
	}
	if len(rounds.Rounds) == 0 {
		rounds = DefaultRoundsConfig()
	}
	return rounds, nil
}

// DefaultRound returns the name of the primary round.
func (c RoundsConfig) DefaultRound() string {
	if len(c.Rounds) == 0 {
		return ""
	}
	return c.Rounds[0].Name
}

// SourcePath resolves a round's file relative to the data directory.
func (c RoundsConfig) SourcePath(dataDir string, r Round) string {
	if filepath.IsAbs(r.File) {
		return r.File
	}
	return filepath.Join(dataDir, r.File)
}
