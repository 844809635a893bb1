package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// Chain verifies settlement references against an Ethereum-compatible node
// over JSON-RPC. A reference verifies when its transaction receipt succeeded
// and contains a settlement event emitted by the configured hub contract.
type Chain struct {
	rpcURL       string
	hubAddress   string
	tokenAddress string
	client       *http.Client
	logger       *slog.Logger
}

// NewChain creates an on-chain verifier
func NewChain(rpcURL, hubAddress, tokenAddress string, timeout time.Duration, logger *slog.Logger) *Chain {
	return &Chain{
		rpcURL:       rpcURL,
		hubAddress:   hubAddress,
		tokenAddress: tokenAddress,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type txReceipt struct {
	Status      string  `json:"status"`
	BlockNumber string  `json:"blockNumber"`
	Logs        []txLog `json:"logs"`
}

type txLog struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

// Verify fetches the transaction receipt for the reference and decodes the
// hub's settlement event from its logs. The declared sender is ignored; the
// on-chain log is authoritative.
func (c *Chain) Verify(ctx context.Context, reference, _ string) (*SettlementEvent, error) {
	if !ValidReference(reference) {
		return nil, &VerificationError{Kind: FailureNotFound, Reference: reference}
	}

	raw, err := c.call(ctx, "eth_getTransactionReceipt", []any{reference})
	if err != nil {
		return nil, &VerificationError{Kind: FailureUnreachable, Reference: reference, Cause: err}
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, &VerificationError{Kind: FailureNotFound, Reference: reference}
	}

	var receipt txReceipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, &VerificationError{Kind: FailureUnreachable, Reference: reference, Cause: fmt.Errorf("malformed receipt: %w", err)}
	}
	if receipt.Status != "0x1" {
		return nil, &VerificationError{Kind: FailureReverted, Reference: reference}
	}

	blockNumber, err := parseHexUint(receipt.BlockNumber)
	if err != nil {
		return nil, &VerificationError{Kind: FailureUnreachable, Reference: reference, Cause: fmt.Errorf("malformed block number: %w", err)}
	}

	for _, lg := range receipt.Logs {
		if !strings.EqualFold(lg.Address, c.hubAddress) {
			continue
		}
		// Hub settlement events index the settlement id, sender, and
		// receiver; the amount rides in the data word.
		if len(lg.Topics) < 4 {
			continue
		}
		amount, err := parseDataWord(lg.Data)
		if err != nil {
			return nil, &VerificationError{Kind: FailureUnreachable, Reference: reference, Cause: fmt.Errorf("malformed event data: %w", err)}
		}

		event := &SettlementEvent{
			Reference:    reference,
			SettlementID: lg.Topics[1],
			TokenAddress: c.tokenAddress,
			Sender:       addressFromTopic(lg.Topics[2]),
			Receiver:     addressFromTopic(lg.Topics[3]),
			AmountWei:    amount.String(),
			BlockNumber:  blockNumber,
			ConfirmedAt:  time.Now(),
			Raw:          raw,
		}
		c.logger.Debug("On-chain settlement verified",
			"reference", reference,
			"settlement_id", event.SettlementID,
			"block_number", blockNumber,
		)
		return event, nil
	}

	// Transaction succeeded but never touched the hub contract
	return nil, &VerificationError{
		Kind:      FailureNotFound,
		Reference: reference,
		Cause:     fmt.Errorf("no settlement event emitted by hub %s", c.hubAddress),
	}
}

func (c *Chain) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc returned status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

func parseHexUint(s string) (uint64, error) {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
	if !ok {
		return 0, fmt.Errorf("invalid hex quantity %q", s)
	}
	return v.Uint64(), nil
}

// parseDataWord decodes the first 32-byte word of a log's data field
func parseDataWord(data string) (*big.Int, error) {
	hexData := strings.TrimPrefix(data, "0x")
	if len(hexData) < 64 {
		return nil, fmt.Errorf("data too short: %d hex chars", len(hexData))
	}
	v, ok := new(big.Int).SetString(hexData[:64], 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex data %q", hexData[:64])
	}
	return v, nil
}

// addressFromTopic extracts the 20-byte address from a 32-byte indexed topic
func addressFromTopic(topic string) string {
	hexTopic := strings.TrimPrefix(topic, "0x")
	if len(hexTopic) != 64 {
		return topic
	}
	return "0x" + hexTopic[24:]
}
