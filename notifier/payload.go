package notifier

import "strings"

const explorer = "https://etherscan.io/block/"

// PayloadFunc builds the payload for a novel value. It must be deterministic.
type PayloadFunc func(Value) Payload

// BlockPayload announces a new block, with assets served from origin.
func BlockPayload(origin string) PayloadFunc {
	origin = strings.TrimSuffix(origin, "/")
	return func(value Value) Payload {
		return Payload{
			Title: "New block",
			Body:  value.String(),
			Icon:  origin + "/eth-glyph-colored.png",
			URL:   explorer + value.String(),
			Type:  "transactional",
		}
	}
}

// GreetingPayload is the fixed payload of the "send test notification" action.
func GreetingPayload(origin string) Payload {
	origin = strings.TrimSuffix(origin, "/")
	return Payload{
		Title: "GM Ladies",
		Body:  "Hack it until you make it!",
		Icon:  origin + "/WalletConnect-blue.svg",
		URL:   origin,
		Type:  "promotional",
	}
}
