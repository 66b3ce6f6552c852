package config

import (
	"github.com/truth-pool/truthpool-go/common"
	"time"
)

type KeeperConf struct {
	// Sender signs keeper transactions. Keeper transitions need no authority.
	Sender   common.Address
	// Backoff is the base delay before a rejected transition is retried.
	Backoff  time.Duration
	MaxTries int
}

func GetDefaultKeeperConfig() *KeeperConf {
	return &KeeperConf{
		Sender:   common.HexToAddress(DefaultKeeperAddress),
		Backoff:  time.Second * 30,
		MaxTries: 3,
	}
}
