package config

import "gopkg.in/urfave/cli.v1"

const (
	DefaultDataDir             = "datadir"
	DefaultDbCache             = 16
	DefaultDbHandles           = 64
	DefaultAdminAddress        = "0x4d60dc6a2cba8c3ef1ba5e1eba5c12c54cee6b61"
	DefaultArbiterAddress      = "0x9a1f3b5d6c2e4f7a8b0c1d2e3f405162738495a6"
	DefaultTreasuryAddress     = "0x2b7c41f0e9d8c7b6a5948372615049382716a5b4"
	DefaultSentinelPoolAddress = "0x5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f7081"
	DefaultKeeperAddress       = "0x7d8e9fa0b1c2d3e4f5061728394a5b6c7d8e9fa0"
)

var (
	CfgFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "JSON configuration file",
	}
	DataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the oracle state",
	}
	DbCacheFlag = cli.IntFlag{
		Name:  "dbcache",
		Usage: "Megabytes of memory allocated to database caching",
	}
	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Log verbosity (0-5)",
		Value: 3,
	}
	LogJsonFlag = cli.BoolFlag{
		Name:  "logjson",
		Usage: "Write logs in JSON format",
	}
	CommitDurationFlag = cli.DurationFlag{
		Name:  "commitduration",
		Usage: "Commit phase length of new queries",
	}
	RevealDurationFlag = cli.DurationFlag{
		Name:  "revealduration",
		Usage: "Time from funding to the reveal deadline of new queries",
	}
	SettlementWindowFlag = cli.DurationFlag{
		Name:  "settlementwindow",
		Usage: "Appeal window after finalization",
	}
	AdminFlag = cli.StringFlag{
		Name:  "admin",
		Usage: "Administrative authority address",
	}
	ArbiterFlag = cli.StringFlag{
		Name:  "arbiter",
		Usage: "Dispute arbiter address",
	}
	TreasuryFlag = cli.StringFlag{
		Name:  "treasury",
		Usage: "Treasury address",
	}
	SentinelPoolFlag = cli.StringFlag{
		Name:  "sentinelpool",
		Usage: "Address receiving sentinel rewards",
	}
	KeeperSenderFlag = cli.StringFlag{
		Name:  "keepersender",
		Usage: "Sender address of keeper transactions",
	}
)

// GlobalFlags are registered on the application.
var GlobalFlags = []cli.Flag{
	CfgFileFlag,
	DataDirFlag,
	DbCacheFlag,
	VerbosityFlag,
	LogJsonFlag,
	CommitDurationFlag,
	RevealDurationFlag,
	SettlementWindowFlag,
	AdminFlag,
	ArbiterFlag,
	TreasuryFlag,
	SentinelPoolFlag,
	KeeperSenderFlag,
}
