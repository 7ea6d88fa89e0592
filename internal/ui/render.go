package ui

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/w3dex/internal/store"
	"github.com/Mohsinsiddi/w3dex/internal/token"
)

const pending = "…"

// RenderState draws the shell state: network, account, tokens and exchange,
// followed by the failed step if there is one.
func RenderState(s store.State) string {
	var sb strings.Builder

	network := [][2]string{{"Endpoint", Meta(pending)}, {"Chain ID", Meta(pending)}}
	if s.Provider.Connected {
		network[0][1] = Addr(s.Provider.Endpoint)
	}
	if s.Provider.ChainID != 0 {
		network[1][1] = ChainName(strconv.FormatInt(s.Provider.ChainID, 10))
	}
	sb.WriteString(KeyValueBlock("Network", network) + "\n")

	account := [][2]string{{"Address", Meta(pending)}, {"Balance", Meta(pending)}}
	if s.Account.Loaded {
		account[0][1] = Addr(s.Account.Address.Hex())
	}
	if s.Account.Balance != nil {
		account[1][1] = Val(formatAmount(s.Account.Balance)) + " " + Meta("ETH")
	}
	sb.WriteString(KeyValueBlock("Account", account) + "\n")

	if len(s.Tokens) > 0 {
		t := NewTable([]Column{
			{Title: "Token", Width: 8},
			{Title: "Address", Width: 14},
			{Title: "Balance", Width: 24},
		})
		for _, tok := range s.Tokens {
			if !tok.Loaded {
				t.AddRow(Row{Meta(pending), "", ""})
				continue
			}
			bal := Meta(pending)
			if tok.Balance != nil {
				bal = Val(formatAmount(tok.Balance))
			}
			t.AddRow(Row{ChainName(tok.Symbol), Addr(TruncateAddr(tok.Address.Hex())), bal})
		}
		sb.WriteString(StyleTitle.Render("Tokens") + "\n" + t.Render() + "\n")
	}

	if s.Exchange.Loaded {
		fee := pending
		if s.Exchange.FeePercent != nil {
			fee = s.Exchange.FeePercent.String() + "%"
		}
		sb.WriteString(KeyValueBlock("Exchange", [][2]string{
			{"Address", Addr(s.Exchange.Address.Hex())},
			{"Fee account", Addr(s.Exchange.FeeAccount.Hex())},
			{"Fee", Val(fee)},
		}) + "\n")
	}

	if s.Failure != nil {
		sb.WriteString(Err(s.Failure.Step+": "+s.Failure.Err.Error()) + "\n")
	}

	return sb.String()
}

func formatAmount(v *big.Int) string {
	return token.FormatUnits(v, token.Decimals)
}
