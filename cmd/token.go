package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3dex/internal/app"
	"github.com/Mohsinsiddi/w3dex/internal/config"
	"github.com/Mohsinsiddi/w3dex/internal/interactions"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/Mohsinsiddi/w3dex/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var tokenYes bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Read and move DAPP / eETH",
	Long: `Token commands run the load sequence first, then act on one of the
loaded tokens. A token is named by symbol (DAPP, eETH) or address.
Addresses may be given as hex, "me" for the loaded account, or
"exchange" for the loaded exchange.

Examples:
  w3dex token info DAPP --dev
  w3dex token transfer DAPP 0x7099...79C8 100 --dev --yes
  w3dex token approve eETH exchange 50 --wallet alice`,
}

var tokenInfoCmd = &cobra.Command{
	Use:   "info <token>",
	Short: "Show name, symbol, decimals and total supply",
	Args:  cobra.ExactArgs(1),
	RunE: runWithToken(func(ctx context.Context, cmd *cobra.Command, tc *tokenContext, args []string) error {
		name, err := tc.token.Name(ctx)
		if err != nil {
			return err
		}
		symbol, err := tc.token.Symbol(ctx)
		if err != nil {
			return err
		}
		decimals, err := tc.token.Decimals(ctx)
		if err != nil {
			return err
		}
		supply, err := tc.token.TotalSupply(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(symbol, [][2]string{
			{"Name", ui.Val(name)},
			{"Address", ui.Addr(tc.token.Address().Hex())},
			{"Decimals", fmt.Sprintf("%d", decimals)},
			{"Total supply", ui.Val(token.FormatUnits(supply, int(decimals)))},
		}))
		return nil
	}),
}

var tokenBalanceCmd = &cobra.Command{
	Use:   "balance <token> [owner]",
	Short: "Show a token balance (default: the loaded account)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: runWithToken(func(ctx context.Context, cmd *cobra.Command, tc *tokenContext, args []string) error {
		owner := tc.session.Account
		if len(args) > 1 {
			var err error
			if owner, err = tc.address(args[1]); err != nil {
				return err
			}
		}
		bal, err := tc.token.BalanceOf(ctx, owner)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s\n", ui.Addr(owner.Hex()), ui.Val(tc.format(bal)), tc.symbol)
		return nil
	}),
}

var tokenAllowanceCmd = &cobra.Command{
	Use:   "allowance <token> <owner> <spender>",
	Short: "Show how much spender may move on owner's behalf",
	Args:  cobra.ExactArgs(3),
	RunE: runWithToken(func(ctx context.Context, cmd *cobra.Command, tc *tokenContext, args []string) error {
		owner, err := tc.address(args[1])
		if err != nil {
			return err
		}
		spender, err := tc.address(args[2])
		if err != nil {
			return err
		}
		allowed, err := tc.token.Allowance(ctx, owner, spender)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s → %s  %s %s\n",
			ui.Addr(ui.TruncateAddr(owner.Hex())), ui.Addr(ui.TruncateAddr(spender.Hex())),
			ui.Val(tc.format(allowed)), tc.symbol)
		return nil
	}),
}

var tokenTransferCmd = &cobra.Command{
	Use:   "transfer <token> <to> <amount>",
	Short: "Transfer tokens from the loaded account",
	Args:  cobra.ExactArgs(3),
	RunE: runWithToken(func(ctx context.Context, cmd *cobra.Command, tc *tokenContext, args []string) error {
		to, err := tc.address(args[1])
		if err != nil {
			return err
		}
		amount, err := tc.parse(args[2])
		if err != nil {
			return err
		}
		prompt := fmt.Sprintf("Transfer %s %s to %s?", args[2], tc.symbol, to.Hex())
		return tc.write(ctx, cmd, prompt, func(tx token.Transactor) (*token.Receipt, error) {
			return tx.Transfer(ctx, to, amount)
		})
	}),
}

var tokenApproveCmd = &cobra.Command{
	Use:   "approve <token> <spender> <amount>",
	Short: "Set spender's allowance over the loaded account",
	Args:  cobra.ExactArgs(3),
	RunE: runWithToken(func(ctx context.Context, cmd *cobra.Command, tc *tokenContext, args []string) error {
		spender, err := tc.address(args[1])
		if err != nil {
			return err
		}
		amount, err := tc.parse(args[2])
		if err != nil {
			return err
		}
		prompt := fmt.Sprintf("Allow %s to spend %s %s?", spender.Hex(), args[2], tc.symbol)
		return tc.write(ctx, cmd, prompt, func(tx token.Transactor) (*token.Receipt, error) {
			return tx.Approve(ctx, spender, amount)
		})
	}),
}

var tokenTransferFromCmd = &cobra.Command{
	Use:   "transfer-from <token> <from> <to> <amount>",
	Short: "Move tokens out of an account that approved the loaded account",
	Args:  cobra.ExactArgs(4),
	RunE: runWithToken(func(ctx context.Context, cmd *cobra.Command, tc *tokenContext, args []string) error {
		from, err := tc.address(args[1])
		if err != nil {
			return err
		}
		to, err := tc.address(args[2])
		if err != nil {
			return err
		}
		amount, err := tc.parse(args[3])
		if err != nil {
			return err
		}
		prompt := fmt.Sprintf("Move %s %s from %s to %s?", args[3], tc.symbol, from.Hex(), to.Hex())
		return tc.write(ctx, cmd, prompt, func(tx token.Transactor) (*token.Receipt, error) {
			return tx.TransferFrom(ctx, from, to, amount)
		})
	}),
}

func init() {
	for _, c := range []*cobra.Command{tokenTransferCmd, tokenApproveCmd, tokenTransferFromCmd} {
		c.Flags().BoolVarP(&tokenYes, "yes", "y", false, "skip the confirmation prompt")
	}
	tokenCmd.AddCommand(tokenInfoCmd, tokenBalanceCmd, tokenAllowanceCmd,
		tokenTransferCmd, tokenApproveCmd, tokenTransferFromCmd)
}

// tokenContext is a loaded session with one of its tokens selected.
type tokenContext struct {
	session  *app.Session
	token    token.Token
	symbol   string
	decimals int
}

// runWithToken loads the shell, resolves args[0] to a loaded token and
// calls fn with a context bounded by the transaction timeout.
func runWithToken(fn func(ctx context.Context, cmd *cobra.Command, tc *tokenContext, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		shell, err := newShell()
		if err != nil {
			return err
		}
		loadCtx, cancel := context.WithTimeout(cmd.Context(), config.LoadTimeout)
		session, err := shell.Load(loadCtx)
		cancel()
		if err != nil {
			return err
		}

		tc := &tokenContext{session: session}
		if err := tc.selectToken(cmd.Context(), shell, args[0]); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.TxConfirmTimeout)
		defer cancel()
		return fn(ctx, cmd, tc, args)
	}
}

func (tc *tokenContext) selectToken(ctx context.Context, shell *app.Shell, ref string) error {
	state := shell.Store().State()
	for i, t := range tc.session.Tokens {
		symbol := state.Tokens[i].Symbol
		if strings.EqualFold(ref, symbol) || strings.EqualFold(ref, t.Address().Hex()) {
			tc.token, tc.symbol = t, symbol
			return tc.loadDecimals(ctx)
		}
	}
	if !common.IsHexAddress(ref) {
		return fmt.Errorf("unknown token %q: use DAPP, eETH or a token address", ref)
	}
	t, err := tc.session.Provider.Token(ctx, common.HexToAddress(ref))
	if err != nil {
		return err
	}
	symbol, err := t.Symbol(ctx)
	if err != nil {
		return err
	}
	tc.token, tc.symbol = t, symbol
	return tc.loadDecimals(ctx)
}

// loadDecimals reads the selected token's precision; amounts are parsed
// and printed at it.
func (tc *tokenContext) loadDecimals(ctx context.Context) error {
	d, err := tc.token.Decimals(ctx)
	if err != nil {
		return fmt.Errorf("%s decimals: %w", tc.symbol, err)
	}
	tc.decimals = int(d)
	return nil
}

func (tc *tokenContext) parse(amount string) (*big.Int, error) {
	return token.ParseUnits(amount, tc.decimals)
}

func (tc *tokenContext) format(v *big.Int) string {
	return token.FormatUnits(v, tc.decimals)
}

// address resolves "me", "exchange" or a hex address.
func (tc *tokenContext) address(ref string) (common.Address, error) {
	switch strings.ToLower(ref) {
	case "me":
		return tc.session.Account, nil
	case "exchange":
		return tc.session.Exchange.Address(), nil
	}
	if !common.IsHexAddress(ref) {
		return common.Address{}, fmt.Errorf("invalid address %q", ref)
	}
	return common.HexToAddress(ref), nil
}

// write confirms, submits the call through the provider's Writer and prints
// the receipt's events.
func (tc *tokenContext) write(ctx context.Context, cmd *cobra.Command, prompt string, send func(token.Transactor) (*token.Receipt, error)) error {
	out := cmd.OutOrStdout()
	writer, ok := tc.session.Provider.(interactions.Writer)
	if !ok {
		return interactions.ErrReadOnly
	}
	tx, err := writer.Transactor(ctx, tc.token.Address())
	if err != nil {
		return err
	}

	if !tokenYes && !ui.Confirm(cmd.InOrStdin(), out, prompt) {
		fmt.Fprintln(out, ui.Meta("Cancelled."))
		return nil
	}

	receipt, err := send(tx)
	if err != nil {
		var revert *token.RevertError
		if errors.As(err, &revert) {
			return fmt.Errorf("transaction reverted: %s", revert.Reason)
		}
		return err
	}

	fmt.Fprintln(out, ui.Success("Confirmed "+receipt.TxHash.Hex()))
	printEvents(out, receipt.Events, tc.decimals)
	return nil
}

func printEvents(out io.Writer, events []token.Event, decimals int) {
	for _, e := range events {
		value := ui.Val(token.FormatUnits(e.Value, decimals))
		switch e.Name {
		case token.EventTransfer:
			fmt.Fprintf(out, "  %s  %s → %s  %s\n", ui.ChainName(e.Name),
				ui.Addr(ui.TruncateAddr(e.From.Hex())), ui.Addr(ui.TruncateAddr(e.To.Hex())), value)
		case token.EventApproval:
			fmt.Fprintf(out, "  %s  %s → %s  %s\n", ui.ChainName(e.Name),
				ui.Addr(ui.TruncateAddr(e.Owner.Hex())), ui.Addr(ui.TruncateAddr(e.Spender.Hex())), value)
		}
	}
}
