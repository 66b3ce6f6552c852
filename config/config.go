package config

import (
	"encoding/json"
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/log"
	"gopkg.in/urfave/cli.v1"
	"io/ioutil"
	"os"
)

type Config struct {
	DataDir     string
	DbCache     int
	DbHandles   int
	Oracle      *OracleConf
	Authorities *AuthoritiesConf
	GenesisConf *GenesisConf
	Keeper      *KeeperConf
}

func MakeConfig(ctx *cli.Context) (*Config, error) {
	cfg := getDefaultConfig()

	if file := ctx.GlobalString(CfgFileFlag.Name); file != "" {
		if err := loadConfig(file, cfg); err != nil {
			log.Error(err.Error())
			return nil, err
		}
	}

	applyFlags(ctx, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MakeDefaultConfig is used by tests and embedders which don't parse flags.
func MakeDefaultConfig() *Config {
	return getDefaultConfig()
}

func getDefaultConfig() *Config {
	return &Config{
		DataDir:     DefaultDataDir,
		DbCache:     DefaultDbCache,
		DbHandles:   DefaultDbHandles,
		Oracle:      GetDefaultOracleConfig(),
		Authorities: GetDefaultAuthoritiesConfig(),
		GenesisConf: &GenesisConf{},
		Keeper:      GetDefaultKeeperConfig(),
	}
}

func (c *Config) Validate() error {
	o := c.Oracle
	if o.Bond == nil || o.Bond.Sign() <= 0 {
		return errors.New("oracle bond should be positive")
	}
	if o.PartnerVirtualCap == nil || o.SentinelVirtualCap == nil || o.AppealBond == nil || o.ReservedMinimum == nil {
		return errors.New("oracle amounts are required")
	}
	if o.ConsensusPercent == 0 || o.ConsensusPercent > 100 {
		return errors.Errorf("invalid consensus percent %v", o.ConsensusPercent)
	}
	if o.WinnerPercent > 100 {
		return errors.Errorf("invalid winner percent %v", o.WinnerPercent)
	}
	if o.CommitDuration <= 0 || o.RevealDuration <= o.CommitDuration {
		return errors.New("reveal deadline should follow commit deadline")
	}
	if o.MaxTallyOptions <= 0 {
		return errors.New("max tally options should be positive")
	}
	a := c.Authorities
	if a.Admin.IsZero() || a.Arbiter.IsZero() || a.Treasury.IsZero() || a.SentinelPool.IsZero() {
		return errors.New("every authority address is required")
	}
	return nil
}

func applyFlags(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet(DataDirFlag.Name) {
		cfg.DataDir = ctx.GlobalString(DataDirFlag.Name)
	}
	if ctx.GlobalIsSet(DbCacheFlag.Name) {
		cfg.DbCache = ctx.GlobalInt(DbCacheFlag.Name)
	}

	applyOracleFlags(ctx, cfg)
	applyAuthorityFlags(ctx, cfg)
	applyKeeperFlags(ctx, cfg)
}

func applyOracleFlags(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet(CommitDurationFlag.Name) {
		cfg.Oracle.CommitDuration = ctx.GlobalDuration(CommitDurationFlag.Name)
	}
	if ctx.GlobalIsSet(RevealDurationFlag.Name) {
		cfg.Oracle.RevealDuration = ctx.GlobalDuration(RevealDurationFlag.Name)
	}
	if ctx.GlobalIsSet(SettlementWindowFlag.Name) {
		cfg.Oracle.SettlementWindow = ctx.GlobalDuration(SettlementWindowFlag.Name)
	}
}

func applyAuthorityFlags(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet(AdminFlag.Name) {
		cfg.Authorities.Admin = parseAddress(ctx.GlobalString(AdminFlag.Name), cfg.Authorities.Admin)
	}
	if ctx.GlobalIsSet(ArbiterFlag.Name) {
		cfg.Authorities.Arbiter = parseAddress(ctx.GlobalString(ArbiterFlag.Name), cfg.Authorities.Arbiter)
	}
	if ctx.GlobalIsSet(TreasuryFlag.Name) {
		cfg.Authorities.Treasury = parseAddress(ctx.GlobalString(TreasuryFlag.Name), cfg.Authorities.Treasury)
	}
	if ctx.GlobalIsSet(SentinelPoolFlag.Name) {
		cfg.Authorities.SentinelPool = parseAddress(ctx.GlobalString(SentinelPoolFlag.Name), cfg.Authorities.SentinelPool)
	}
}

func applyKeeperFlags(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet(KeeperSenderFlag.Name) {
		cfg.Keeper.Sender = parseAddress(ctx.GlobalString(KeeperSenderFlag.Name), cfg.Keeper.Sender)
	}
}

func parseAddress(s string, fallback common.Address) common.Address {
	if !common.IsHexAddress(s) {
		log.Warn("Cant parse address flag, default is used", "value", s)
		return fallback
	}
	return common.HexToAddress(s)
}

func loadConfig(configPath string, conf *Config) error {
	if _, err := os.Stat(configPath); err != nil {
		return errors.Errorf("Config file cannot be found, path: %v", configPath)
	}

	if jsonFile, err := os.Open(configPath); err != nil {
		return errors.Errorf("Config file cannot be opened, path: %v", configPath)
	} else {
		defer jsonFile.Close()
		byteValue, _ := ioutil.ReadAll(jsonFile)
		err := json.Unmarshal(byteValue, &conf)
		if err != nil {
			return errors.Errorf("Cannot parse JSON config, path: %v, err: %v", configPath, err)
		}
		return nil
	}
}
