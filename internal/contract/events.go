package contract

import (
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3dex/internal/chain"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

var (
	transferTopic = eventTopic(findEntry(erc20ABI, "event", token.EventTransfer))
	approvalTopic = eventTopic(findEntry(erc20ABI, "event", token.EventApproval))
)

// decodeEvents extracts Transfer and Approval events emitted by emitter.
// Logs from other contracts and unknown topics are skipped.
func decodeEvents(logs []chain.LogEntry, emitter common.Address) []token.Event {
	var out []token.Event
	for _, lg := range logs {
		if !strings.EqualFold(lg.Address, emitter.Hex()) || len(lg.Topics) != 3 {
			continue
		}
		data := common.FromHex(lg.Data)
		if len(data) != 32 {
			continue
		}
		a := topicAddress(lg.Topics[1])
		b := topicAddress(lg.Topics[2])
		value := new(big.Int).SetBytes(data)

		switch strings.ToLower(lg.Topics[0]) {
		case transferTopic:
			out = append(out, token.Event{Name: token.EventTransfer, From: a, To: b, Value: value})
		case approvalTopic:
			out = append(out, token.Event{Name: token.EventApproval, Owner: a, Spender: b, Value: value})
		}
	}
	return out
}

func topicAddress(topic string) common.Address {
	return common.BytesToAddress(common.FromHex(topic))
}
