package config

import (
	"bytes"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/core/state"
	"math/big"
	"sort"
)

type GenesisAllocation struct {
	// Balance credits the wallet.
	Balance     *big.Int
	// Participant allocations register the address with Deposit on its participant balance.
	Participant *GenesisParticipant
}

type GenesisParticipant struct {
	Category string
	Role     state.Role
	Deposit  *big.Int
}

type GenesisConf struct {
	Alloc map[common.Address]GenesisAllocation
}

// PredefinedState converts the allocation into the state loaded by the init command.
func (c *GenesisConf) PredefinedState() *state.PredefinedState {
	addrs := make([]common.Address, 0, len(c.Alloc))
	for addr := range c.Alloc {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
	predefined := &state.PredefinedState{}
	for _, addr := range addrs {
		alloc := c.Alloc[addr]
		if alloc.Balance != nil {
			predefined.Accounts = append(predefined.Accounts, &state.StateAccount{
				Address: addr,
				Balance: alloc.Balance,
			})
		}
		if p := alloc.Participant; p != nil {
			predefined.Participants = append(predefined.Participants, &state.StateParticipant{
				Address:  addr,
				Category: p.Category,
				Role:     p.Role,
				Balance:  p.Deposit,
			})
		}
	}
	return predefined
}
