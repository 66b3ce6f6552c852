package main

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/truth-pool/truthpool-go/blockchain/attachments"
	"github.com/truth-pool/truthpool-go/blockchain/types"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/common/math"
	"github.com/truth-pool/truthpool-go/core/oracle"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/keeper"
	"github.com/truth-pool/truthpool-go/log"
	"gopkg.in/urfave/cli.v1"
	"math/big"
	"time"
)

var (
	FromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "Sender address",
	}
	TimeFlag = cli.Int64Flag{
		Name:  "time",
		Usage: "Transaction timestamp in unix seconds, the host clock by default",
	}
	EventFlag = cli.StringFlag{
		Name:  "event",
		Usage: "Event id of the query",
	}
	TargetFlag = cli.StringFlag{
		Name:  "target",
		Usage: "Participant the transaction acts on",
	}
	AmountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "Amount in asset units, e.g. 1.5",
	}
	CategoryFlag = cli.StringFlag{
		Name:  "category",
		Usage: "Participant or query category",
	}
	FormatFlag = cli.UintFlag{
		Name:  "format",
		Usage: "Response format code: 0 binary, 1 score, 2 decimal, 3 string, 4 option index",
	}
	ValueFlag = cli.StringFlag{
		Name:  "value",
		Usage: "Vote value",
	}
	SecretFlag = cli.StringFlag{
		Name:  "secret",
		Usage: "Vote secret",
	}
	HintFlag = cli.StringFlag{
		Name:  "hint",
		Usage: "Optional hint stored with the commitment",
	}
	ResultFlag = cli.StringFlag{
		Name:  "result",
		Usage: "Replacement result, omit to void the query",
	}
	ReasonFlag = cli.StringFlag{
		Name:  "reason",
		Usage: "Appeal reason",
	}
	UpholdFlag = cli.BoolFlag{
		Name:  "uphold",
		Usage: "Keep the appealed result",
	}
	AddressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "Participant or wallet address",
	}
	HashFlag = cli.StringFlag{
		Name:  "hash",
		Usage: "Transaction hash, or a precomputed vote commitment",
	}
)

var txFlags = []cli.Flag{FromFlag, TimeFlag}

// txBuilder fills the type specific part of a transaction from the command flags.
type txBuilder func(ctx *cli.Context, tx *types.Transaction) error

func txCommand(txType types.TxType, usage string, flags []cli.Flag, build txBuilder) cli.Command {
	return cli.Command{
		Name:   types.TxTypeName(txType),
		Usage:  usage,
		Flags:  append(append([]cli.Flag{}, txFlags...), flags...),
		Action: withNode(func(ctx *cli.Context, n *node) error {
			tx, err := newTx(ctx, txType)
			if err != nil {
				return err
			}
			if build != nil {
				if err := build(ctx, tx); err != nil {
					return err
				}
			}
			res, err := n.baseApi.SendTx(tx)
			if err != nil {
				return err
			}
			if !res.Success {
				log.Warn("Transaction rejected", "type", types.TxTypeName(txType), "kind", res.Kind, "err", res.Error)
			}
			return printJson(res)
		}),
	}
}

func newTx(ctx *cli.Context, txType types.TxType) (*types.Transaction, error) {
	from, err := parseAddress(ctx, FromFlag.Name)
	if err != nil {
		return nil, err
	}
	timestamp := ctx.Int64(TimeFlag.Name)
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}
	return &types.Transaction{
		Type:      txType,
		Sender:    from,
		Timestamp: timestamp,
		EventID:   ctx.String(EventFlag.Name),
	}, nil
}

func parseAddress(ctx *cli.Context, name string) (common.Address, error) {
	s := ctx.String(name)
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("--%v should be a hex address, got %q", name, s)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(ctx *cli.Context) (*big.Int, error) {
	amount, err := decimal.NewFromString(ctx.String(AmountFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, "invalid --amount")
	}
	return math.ConvertToInt(amount), nil
}

func withAmount(ctx *cli.Context, tx *types.Transaction) error {
	amount, err := parseAmount(ctx)
	if err != nil {
		return err
	}
	tx.Amount = amount
	return nil
}

func withTarget(ctx *cli.Context, tx *types.Transaction) error {
	if !ctx.IsSet(TargetFlag.Name) {
		return nil
	}
	target, err := parseAddress(ctx, TargetFlag.Name)
	if err != nil {
		return err
	}
	tx.Target = &target
	return nil
}

func withResult(ctx *cli.Context, tx *types.Transaction) error {
	var result *string
	if ctx.IsSet(ResultFlag.Name) {
		value := ctx.String(ResultFlag.Name)
		result = &value
	}
	tx.Payload = attachments.CreateResolveAttachment(result)
	return nil
}

func registration(requireTarget bool) txBuilder {
	return func(ctx *cli.Context, tx *types.Transaction) error {
		if requireTarget && !ctx.IsSet(TargetFlag.Name) {
			return errors.New("--target is required")
		}
		if err := withTarget(ctx, tx); err != nil {
			return err
		}
		tx.Payload = attachments.CreateRegisterAttachment(ctx.String(CategoryFlag.Name))
		return nil
	}
}

// voteValue reads --value, normalized for the query format when --format is given.
func voteValue(ctx *cli.Context) (string, error) {
	value := ctx.String(ValueFlag.Name)
	if !ctx.IsSet(FormatFlag.Name) {
		return value, nil
	}
	return oracle.NormalizeValue(state.FormatFromCode(uint8(ctx.Uint(FormatFlag.Name))), value)
}

func commitPayload(ctx *cli.Context, tx *types.Transaction) error {
	var hash common.Hash
	switch {
	case ctx.IsSet(HashFlag.Name):
		hash = common.HexToHash(ctx.String(HashFlag.Name))
	case ctx.IsSet(ValueFlag.Name) && ctx.IsSet(SecretFlag.Name):
		value, err := voteValue(ctx)
		if err != nil {
			return err
		}
		hash = oracle.VoteHash(value, ctx.String(SecretFlag.Name))
	default:
		return errors.New("either --hash or --value with --secret is required")
	}
	var hint []byte
	if ctx.IsSet(HintFlag.Name) {
		hint = []byte(ctx.String(HintFlag.Name))
	}
	tx.Payload = attachments.CreateCommitAttachment(hash, hint)
	return nil
}

func revealPayload(ctx *cli.Context, tx *types.Transaction) error {
	value, err := voteValue(ctx)
	if err != nil {
		return err
	}
	tx.Payload = attachments.CreateRevealAttachment(value, ctx.String(SecretFlag.Name))
	return nil
}

var eventFlags = []cli.Flag{EventFlag}

var settlementFlags = []cli.Flag{EventFlag, TargetFlag}

var commands = []cli.Command{
	{
		Name:   "init",
		Usage:  "Load the genesis allocation into an empty database",
		Action: withNode(func(ctx *cli.Context, n *node) error { return n.processor.InitializeGenesis() }),
	},
	txCommand(types.RegisterParticipantTx, "Register the sender as a standard participant",
		[]cli.Flag{CategoryFlag}, registration(false)),
	txCommand(types.RegisterPartnerTx, "Register a partner (admin only)",
		[]cli.Flag{CategoryFlag, TargetFlag}, registration(true)),
	txCommand(types.RegisterSentinelTx, "Register a sentinel (admin only)",
		[]cli.Flag{CategoryFlag, TargetFlag}, registration(true)),
	txCommand(types.DepositTx, "Move funds from the wallet to the participant balance",
		[]cli.Flag{AmountFlag}, withAmount),
	txCommand(types.WithdrawTx, "Move free participant funds back to the wallet",
		[]cli.Flag{AmountFlag}, withAmount),
	txCommand(types.FundTx, "Transfer funds between wallets",
		[]cli.Flag{TargetFlag, AmountFlag}, func(ctx *cli.Context, tx *types.Transaction) error {
			if !ctx.IsSet(TargetFlag.Name) {
				return errors.New("--target is required")
			}
			if err := withTarget(ctx, tx); err != nil {
				return err
			}
			return withAmount(ctx, tx)
		}),
	txCommand(types.RequestDataTx, "Open or top up a query",
		[]cli.Flag{EventFlag, CategoryFlag, AmountFlag, FormatFlag}, func(ctx *cli.Context, tx *types.Transaction) error {
			if err := withAmount(ctx, tx); err != nil {
				return err
			}
			tx.Payload = attachments.CreateRequestDataAttachment(ctx.String(CategoryFlag.Name), uint8(ctx.Uint(FormatFlag.Name)))
			return nil
		}),
	txCommand(types.CommitTx, "Commit a hidden vote",
		[]cli.Flag{EventFlag, ValueFlag, SecretFlag, FormatFlag, HashFlag, HintFlag}, commitPayload),
	txCommand(types.RevealTx, "Reveal a committed vote",
		[]cli.Flag{EventFlag, ValueFlag, SecretFlag, FormatFlag}, revealPayload),
	txCommand(types.AdvancePhaseTx, "Close the commit phase", eventFlags, nil),
	txCommand(types.TallyTx, "Tally revealed votes", eventFlags, nil),
	txCommand(types.ArbiterResolveTx, "Settle a dispute at the first level (arbiter only)",
		[]cli.Flag{EventFlag, ResultFlag}, withResult),
	txCommand(types.EscalateTx, "Escalate a dispute to the admin", eventFlags, nil),
	txCommand(types.DaoResolveTx, "Settle an escalated dispute (admin only)",
		[]cli.Flag{EventFlag, ResultFlag}, withResult),
	txCommand(types.FileAppealTx, "Challenge a finalized result",
		[]cli.Flag{EventFlag, ReasonFlag}, func(ctx *cli.Context, tx *types.Transaction) error {
			tx.Payload = attachments.CreateAppealAttachment(ctx.String(ReasonFlag.Name))
			return nil
		}),
	txCommand(types.ResolveAppealTx, "Uphold or overturn an appealed result (admin only)",
		[]cli.Flag{EventFlag, UpholdFlag}, func(ctx *cli.Context, tx *types.Transaction) error {
			tx.Payload = attachments.CreateResolveAppealAttachment(ctx.Bool(UpholdFlag.Name))
			return nil
		}),
	txCommand(types.ClaimTx, "Release the bond and collect the reward", settlementFlags, withTarget),
	txCommand(types.SlashLiarTx, "Penalize a participant who revealed a losing value", settlementFlags, withTarget),
	txCommand(types.SlashNonRevealerTx, "Penalize a participant who never revealed", settlementFlags, withTarget),
	txCommand(types.RecoverFromVoidTx, "Release the bond held by a voided query", settlementFlags, withTarget),
	txCommand(types.ReclaimBountyTx, "Refund a contribution to a voided query", settlementFlags, withTarget),
	txCommand(types.SweepBountyTx, "Move a bounty nobody can claim to the treasury", eventFlags, nil),
	{
		Name:  "show-query",
		Usage: "Print a query",
		Flags: eventFlags,
		Action: withNode(func(ctx *cli.Context, n *node) error {
			q, err := n.oracleApi.Query(ctx.String(EventFlag.Name))
			if err != nil {
				return err
			}
			return printJson(q)
		}),
	},
	{
		Name:  "show-participant",
		Usage: "Print a participant",
		Flags: []cli.Flag{AddressFlag},
		Action: withNode(func(ctx *cli.Context, n *node) error {
			addr, err := parseAddress(ctx, AddressFlag.Name)
			if err != nil {
				return err
			}
			p, err := n.oracleApi.Participant(addr)
			if err != nil {
				return err
			}
			return printJson(p)
		}),
	},
	{
		Name:  "balance",
		Usage: "Print a wallet balance",
		Flags: []cli.Flag{AddressFlag},
		Action: withNode(func(ctx *cli.Context, n *node) error {
			addr, err := parseAddress(ctx, AddressFlag.Name)
			if err != nil {
				return err
			}
			return printJson(n.oracleApi.Balance(addr))
		}),
	},
	{
		Name:  "commitments",
		Usage: "Print the commitments of a query",
		Flags: eventFlags,
		Action: withNode(func(ctx *cli.Context, n *node) error {
			res, err := n.oracleApi.Commitments(ctx.String(EventFlag.Name))
			if err != nil {
				return err
			}
			return printJson(res)
		}),
	},
	{
		Name:  "outcome",
		Usage: "Print the settled outcome of a query",
		Flags: eventFlags,
		Action: withNode(func(ctx *cli.Context, n *node) error {
			outcome, err := n.oracleApi.Outcome(ctx.String(EventFlag.Name))
			if err != nil {
				return err
			}
			return printJson(outcome)
		}),
	},
	{
		Name:  "receipt",
		Usage: "Print the receipt of a submitted transaction",
		Flags: []cli.Flag{HashFlag},
		Action: withNode(func(ctx *cli.Context, n *node) error {
			receipt := n.baseApi.Receipt(common.HexToHash(ctx.String(HashFlag.Name)))
			if receipt == nil {
				return errors.New("receipt not found")
			}
			return printJson(receipt)
		}),
	},
	{
		Name:  "vote-hash",
		Usage: "Compute the commitment of a value and secret",
		Flags: []cli.Flag{ValueFlag, SecretFlag, FormatFlag},
		Action: func(ctx *cli.Context) error {
			value, err := voteValue(ctx)
			if err != nil {
				return err
			}
			return printJson(oracle.VoteHash(value, ctx.String(SecretFlag.Name)))
		},
	},
	{
		Name:  "keeper",
		Usage: "Submit due phase transitions once",
		Flags: []cli.Flag{TimeFlag},
		Action: withNode(func(ctx *cli.Context, n *node) error {
			job, err := keeper.NewJob(n.processor, n.cfg)
			if err != nil {
				return err
			}
			now := ctx.Int64(TimeFlag.Name)
			if now == 0 {
				now = time.Now().Unix()
			}
			report := job.Run(now)
			log.Info("Keeper round done", "time", common.TimestampToTime(now), "submitted", report.Submitted,
				"failed", report.Failed, "deferred", report.Deferred)
			return printJson(report)
		}),
	},
}
