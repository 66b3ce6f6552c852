package main

import (
	"encoding/json"
	"github.com/rcrowley/go-metrics"
	"github.com/truth-pool/truthpool-go/api"
	"github.com/truth-pool/truthpool-go/blockchain"
	"github.com/truth-pool/truthpool-go/common/eventbus"
	"github.com/truth-pool/truthpool-go/config"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/database"
	"github.com/truth-pool/truthpool-go/events"
	"github.com/truth-pool/truthpool-go/log"
	dbm "github.com/tendermint/tm-db"
	"gopkg.in/urfave/cli.v1"
	"os"
)

const dbName = "truthpool"

// node bundles everything one CLI invocation works with.
type node struct {
	cfg       *config.Config
	db        dbm.DB
	processor *blockchain.Processor
	baseApi   *api.BaseApi
	oracleApi *api.OracleApi
}

func openNode(ctx *cli.Context) (*node, error) {
	cfg, err := config.MakeConfig(ctx)
	if err != nil {
		return nil, err
	}
	db, err := database.OpenDatabase(cfg.DataDir, dbName, cfg.DbCache, cfg.DbHandles)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New()
	bus.Subscribe(events.QueryStatusEventID, func(e eventbus.Event) {
		status := e.(*events.QueryStatusEvent)
		log.Info("Query status changed", "query", status.Query, "status", state.QueryStatus(status.Status).String())
	})
	bus.Subscribe(events.ClaimEventID, func(e eventbus.Event) {
		claim := e.(*events.ClaimEvent)
		log.Info("Claim processed", "query", claim.Query, "participant", claim.Participant.Hex(), "reward", claim.Reward)
	})

	processor := blockchain.NewProcessor(cfg, db, bus, metrics.DefaultRegistry)
	baseApi := api.NewBaseApi(processor)
	return &node{
		cfg:       cfg,
		db:        db,
		processor: processor,
		baseApi:   baseApi,
		oracleApi: api.NewOracleApi(baseApi),
	}, nil
}

func (n *node) Close() {
	if err := n.db.Close(); err != nil {
		log.Warn("Cannot close database", "err", err)
	}
}

// withNode opens the node for the duration of action.
func withNode(action func(ctx *cli.Context, n *node) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		n, err := openNode(ctx)
		if err != nil {
			return err
		}
		defer n.Close()
		return action(ctx, n)
	}
}

func printJson(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
