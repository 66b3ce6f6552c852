package config

import (
	"github.com/stretchr/testify/require"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/core/state"
	"gopkg.in/urfave/cli.v1"
	"io/ioutil"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	require := require.New(t)
	dir, err := ioutil.TempDir("", "truthpool-config")
	require.NoError(err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.json")
	require.NoError(ioutil.WriteFile(path, []byte(`{
		"DataDir": "custom",
		"Oracle": {"Bond": 1000, "MinQuorum": 3},
		"Authorities": {"Admin": "0x0000000000000000000000000000000000000001"},
		"GenesisConf": {"Alloc": {
			"0x0000000000000000000000000000000000000002": {"Balance": 50},
			"0x0000000000000000000000000000000000000003": {"Participant": {"Category": "sports", "Role": 1, "Deposit": 7}}
		}}
	}`), 0644))

	cfg := getDefaultConfig()
	require.NoError(loadConfig(path, cfg))
	require.Equal("custom", cfg.DataDir)
	require.Equal(big.NewInt(1000), cfg.Oracle.Bond)
	require.Equal(uint64(3), cfg.Oracle.MinQuorum)
	// untouched fields keep defaults
	require.Equal(uint8(66), cfg.Oracle.ConsensusPercent)
	require.Equal(common.Address{19: 0x1}, cfg.Authorities.Admin)
	require.Equal(common.HexToAddress(DefaultTreasuryAddress), cfg.Authorities.Treasury)
	require.NoError(cfg.Validate())

	predefined := cfg.GenesisConf.PredefinedState()
	require.Len(predefined.Accounts, 1)
	require.Equal(big.NewInt(50), predefined.Accounts[0].Balance)
	require.Len(predefined.Participants, 1)
	require.Equal(state.Partner, predefined.Participants[0].Role)
	require.Equal("sports", predefined.Participants[0].Category)

	require.Error(loadConfig(filepath.Join(dir, "missing.json"), cfg))
	require.NoError(ioutil.WriteFile(path, []byte(`{`), 0644))
	require.Error(loadConfig(path, cfg))
}

func TestConfig_Validate(t *testing.T) {
	cfg := getDefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Oracle.ConsensusPercent = 101
	require.Error(t, cfg.Validate())

	cfg = getDefaultConfig()
	cfg.Oracle.RevealDuration = cfg.Oracle.CommitDuration
	require.Error(t, cfg.Validate())

	cfg = getDefaultConfig()
	cfg.Authorities.Arbiter = common.Address{}
	require.Error(t, cfg.Validate())
}

func TestMakeConfig_Flags(t *testing.T) {
	require := require.New(t)
	var cfg *Config
	app := cli.NewApp()
	app.Flags = GlobalFlags
	app.Action = func(ctx *cli.Context) error {
		var err error
		cfg, err = MakeConfig(ctx)
		return err
	}
	require.NoError(app.Run([]string{"truthpool",
		"--datadir", "other",
		"--commitduration", "1m",
		"--revealduration", "3m",
		"--arbiter", "0x00000000000000000000000000000000000000aa",
		"--treasury", "bad",
	}))
	require.NotNil(cfg)
	require.Equal("other", cfg.DataDir)
	require.Equal(time.Minute, cfg.Oracle.CommitDuration)
	require.Equal(3*time.Minute, cfg.Oracle.RevealDuration)
	require.Equal(common.Address{19: 0xaa}, cfg.Authorities.Arbiter)
	require.Equal(common.HexToAddress(DefaultTreasuryAddress), cfg.Authorities.Treasury)
}
