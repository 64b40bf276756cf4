package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const weth9ABIJSON = `[
  {"inputs": [], "name": "deposit", "outputs": [], "stateMutability": "payable", "type": "function"},
  {"inputs": [{"internalType": "uint256", "name": "wad", "type": "uint256"}], "name": "withdraw", "outputs": [], "stateMutability": "nonpayable", "type": "function"}
]`

var (
	weth9ABI     abi.ABI
	weth9ABIOnce sync.Once
	weth9ABIErr  error
)

// WETH9ABI returns the parsed wrapped-native-asset ABI.
func WETH9ABI() (abi.ABI, error) {
	weth9ABIOnce.Do(func() {
		weth9ABI, weth9ABIErr = abi.JSON(strings.NewReader(weth9ABIJSON))
	})
	return weth9ABI, weth9ABIErr
}
