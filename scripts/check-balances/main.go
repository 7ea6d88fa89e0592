// check-balances: queries ETH, DAPP and eETH balances of the Hardhat
// development accounts on a node, in parallel, and prints a summary table.
//
// Run from the module root against a node the deploy script has run on:
//
//	go run ./scripts/check-balances [-rpc http://127.0.0.1:8545] [-chain-config chains.json]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/w3dex/internal/config"
	"github.com/Mohsinsiddi/w3dex/internal/devchain"
	"github.com/Mohsinsiddi/w3dex/internal/providers"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

var accounts = []string{
	"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
	"0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	"0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC",
	"0x90F79bf6EB2c4f870365E51C3e0C4c8cE8C7F5f5",
}

const rpcTimeout = 12 * time.Second

type result struct {
	account string
	asset   string
	balance string
	err     string
}

func main() {
	rpcURL := flag.String("rpc", "http://127.0.0.1:8545", "JSON-RPC endpoint")
	chainCfg := flag.String("chain-config", "", "chain config file (default: the local Hardhat layout)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	p, err := providers.DialRPC(ctx, providers.Options{URL: *rpcURL})
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(1)
	}
	chainID, err := p.ChainID(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "chain id:", err)
		os.Exit(1)
	}

	chains := devchain.New().Config()
	if *chainCfg != "" {
		if chains, err = config.LoadChainConfig(*chainCfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	contracts, err := chains.ForChain(chainID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)
	record := func(r result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	for _, acct := range accounts {
		owner := common.HexToAddress(acct)

		wg.Add(1)
		go func() {
			defer wg.Done()
			r := result{account: shortAddr(acct), asset: "ETH"}
			if bal, err := p.BalanceAt(ctx, owner); err != nil {
				r.balance, r.err = "—", shortErr(err)
			} else {
				r.balance = token.FormatUnits(bal, token.Decimals)
			}
			record(r)
		}()

		for _, addr := range contracts.TokenAddresses() {
			wg.Add(1)
			go func(addr common.Address) {
				defer wg.Done()
				r := result{account: shortAddr(acct), asset: shortAddr(addr.Hex())}
				defer func() { record(r) }()

				t, err := p.Token(ctx, addr)
				if err != nil {
					r.balance, r.err = "—", shortErr(err)
					return
				}
				if sym, err := t.Symbol(ctx); err == nil {
					r.asset = sym
				}
				bal, err := t.BalanceOf(ctx, owner)
				if err != nil {
					r.balance, r.err = "—", shortErr(err)
					return
				}
				r.balance = token.FormatUnits(bal, token.Decimals)
			}(addr)
		}
	}

	wg.Wait()

	printTable(chainID, results)
}

func printTable(chainID int64, results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.account != b.account {
			return a.account < b.account
		}
		return a.asset < b.asset
	})

	fmt.Printf("chain %d\n\n", chainID)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tASSET\tBALANCE\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 6)+"\t"+
		strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 12))
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.account, r.asset, r.balance, r.err)
	}
	w.Flush()
}

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
