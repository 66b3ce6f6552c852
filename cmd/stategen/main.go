package main

import (
	"encoding/json"
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/common/eventbus"
	"github.com/truth-pool/truthpool-go/config"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/database"
	"github.com/truth-pool/truthpool-go/log"
	"gopkg.in/urfave/cli.v1"
	"math/big"
	"os"
)

var OutputFlag = cli.StringFlag{
	Name:  "out",
	Usage: "File receiving the genesis allocation",
	Value: "stategen.out",
}

// stategen exports wallet and participant balances of an existing database as a
// genesis allocation, so a fresh node can start from the same balances.
func main() {
	app := cli.NewApp()

	app.Flags = []cli.Flag{
		config.DataDirFlag,
		config.VerbosityFlag,
		config.LogJsonFlag,
		OutputFlag,
	}

	app.Action = func(context *cli.Context) error {
		log.Setup(os.Stderr, context.Int(config.VerbosityFlag.Name), context.Bool(config.LogJsonFlag.Name))

		if !context.IsSet(config.DataDirFlag.Name) {
			return errors.New("datadir option is required")
		}

		db, err := database.OpenDatabase(context.String(config.DataDirFlag.Name), "truthpool", config.DefaultDbCache, config.DefaultDbHandles)
		if err != nil {
			return err
		}
		defer db.Close()

		genesis, err := exportGenesis(appstate.NewAppState(db, eventbus.New()))
		if err != nil {
			return err
		}

		file, err := os.Create(context.String(OutputFlag.Name))
		if err != nil {
			return err
		}
		defer file.Close()

		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct{ GenesisConf *config.GenesisConf }{genesis}); err != nil {
			return err
		}
		log.Info("Genesis exported", "allocations", len(genesis.Alloc), "file", file.Name())
		return nil
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func exportGenesis(appState *appstate.AppState) (*config.GenesisConf, error) {
	genesis := &config.GenesisConf{Alloc: make(map[common.Address]config.GenesisAllocation)}

	err := appState.State.IterateAccounts(func(addr common.Address, balance *big.Int) bool {
		if balance.Sign() > 0 {
			genesis.Alloc[addr] = config.GenesisAllocation{Balance: balance}
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	err = appState.State.IterateParticipants(func(addr common.Address, p state.Participant) bool {
		if !p.Active {
			return false
		}
		alloc := genesis.Alloc[addr]
		deposit := new(big.Int).Add(p.Balance, p.PendingBond)
		deposit.Add(deposit, p.LockedBond)
		alloc.Participant = &config.GenesisParticipant{
			Category: p.Category,
			Role:     p.Role,
			Deposit:  deposit,
		}
		genesis.Alloc[addr] = alloc
		return false
	})
	if err != nil {
		return nil, err
	}
	return genesis, nil
}
