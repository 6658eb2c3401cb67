package txbuilder

// Usage example (not compiled):
//
//  fees, err := txbuilder.EstimateFees(state.BaseFee, txbuilder.FeeOptions{})
//  if err != nil { ... }
//
//  tx, err := txbuilder.BuildTransferTx(state.ChainID, txbuilder.TransferParams{
//      To: to, ValueWei: amount, Nonce: state.Nonce, GasLimit: txbuilder.TransferGas, Fee: fees,
//  })
//  // sign + send tx
//
