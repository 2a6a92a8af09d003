package eth

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog/log"

	notifier "github.com/IRT-SystemX/bcm-notifier/notifier"
)

var (
	retry = time.Duration(5) * time.Second
)

// EthSource reads the latest block number of an Ethereum node.
type EthSource struct {
	url    string
	retry  time.Duration
	client *ethclient.Client
}

func NewEthSource(web3Socket string) *EthSource {
	return &EthSource{url: web3Socket, retry: retry}
}

// Connect dials the node, retrying until it answers or ctx is done.
func (source *EthSource) Connect(ctx context.Context) error {
	for {
		rawClient, err := rpc.DialContext(ctx, source.url)
		if err == nil {
			source.client = ethclient.NewClient(rawClient)
			return nil
		}
		log.Warn().Err(err).Str("url", source.url).Msg("Web3 dial failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(source.retry):
		}
	}
}

func (source *EthSource) Latest(ctx context.Context) (*big.Int, error) {
	number, err := source.client.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(number), nil
}

func (source *EthSource) Fetch(ctx context.Context) (notifier.Value, error) {
	latest, err := source.Latest(ctx)
	if err != nil {
		return "", err
	}
	return notifier.Value(latest.String()), nil
}

// ChainID is used to namespace recipients (eip155:<chain id>:<address>).
func (source *EthSource) ChainID(ctx context.Context) (*big.Int, error) {
	return source.client.ChainID(ctx)
}

func (source *EthSource) Close() {
	if source.client != nil {
		source.client.Close()
	}
}
