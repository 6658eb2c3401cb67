package keys

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Key holds a single secp256k1 signing key in memory for the lifetime of a
// run. It is passed around explicitly; there is no process-wide key and
// nothing is ever written to disk.
type Key struct {
	priv *ecdsa.PrivateKey
	addr common.Address
}

func FromHex(hexKey string) (*Key, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, errors.New("private key is empty")
	}
	hexKey = strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X")
	priv, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, errors.New("invalid private key: " + err.Error())
	}
	return &Key{
		priv: priv,
		addr: crypto.PubkeyToAddress(priv.PublicKey),
	}, nil
}

// Address is the sender address derived from the key.
func (k *Key) Address() common.Address {
	return k.addr
}

// SignTx signs tx for the given chain. The signature binds the chain id, so
// the result is only valid on that network.
func (k *Key) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, errors.New("chain id is required for signing")
	}
	signer := types.LatestSignerForChainID(chainID)
	return types.SignTx(tx, signer, k.priv)
}
