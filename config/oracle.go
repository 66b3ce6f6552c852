package config

import (
	"github.com/truth-pool/truthpool-go/common"
	"math/big"
	"time"
)

type OracleConf struct {
	Bond               *big.Int
	PartnerVirtualCap  *big.Int
	SentinelVirtualCap *big.Int
	AppealBond         *big.Int
	// ReservedMinimum is kept on every participant balance and can't be withdrawn or slashed.
	ReservedMinimum    *big.Int

	MaxSentinels      uint32
	MinQuorum         uint64
	ConsensusPercent  uint8
	WinnerPercent     uint8
	Penalty           int64
	TrustedReputation int64

	CommitDuration   time.Duration
	RevealDuration   time.Duration
	EscalationDelay  time.Duration
	SettlementWindow time.Duration

	MaxHintSize       int
	MaxValueSize      int
	MaxTallyOptions   int
	MaxEventIDLength  int
	MaxCategoryLength int
}

type AuthoritiesConf struct {
	Admin        common.Address
	Arbiter      common.Address
	Treasury     common.Address
	SentinelPool common.Address
}

func GetDefaultOracleConfig() *OracleConf {
	return &OracleConf{
		Bond:               big.NewInt(500_000_000),
		PartnerVirtualCap:  new(big.Int).Mul(big.NewInt(500), common.AssetBase),
		SentinelVirtualCap: new(big.Int).Mul(big.NewInt(500), common.AssetBase),
		AppealBond:         new(big.Int).Set(common.AssetBase),
		ReservedMinimum:    big.NewInt(2_000_000),
		MaxSentinels:       100,
		MinQuorum:          100,
		ConsensusPercent:   66,
		WinnerPercent:      90,
		Penalty:            10,
		TrustedReputation:  100,
		CommitDuration:     time.Second * 600,
		RevealDuration:     time.Second * 1200,
		EscalationDelay:    time.Hour * 24,
		SettlementWindow:   time.Hour * 12,
		MaxHintSize:        1024,
		MaxValueSize:       256,
		MaxTallyOptions:    50,
		MaxEventIDLength:   64,
		MaxCategoryLength:  32,
	}
}

func GetDefaultAuthoritiesConfig() *AuthoritiesConf {
	return &AuthoritiesConf{
		Admin:        common.HexToAddress(DefaultAdminAddress),
		Arbiter:      common.HexToAddress(DefaultArbiterAddress),
		Treasury:     common.HexToAddress(DefaultTreasuryAddress),
		SentinelPool: common.HexToAddress(DefaultSentinelPoolAddress),
	}
}
