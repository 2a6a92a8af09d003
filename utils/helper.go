package utils

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

func IntToString(val int64) string {
	return strconv.FormatInt(val, 10)
}

// Decode parses a 0x-prefixed hex quantity.
func Decode(res string) (*big.Int, error) {
	return hexutil.DecodeBig(res)
}
