package core

// transaction.go – the transaction value type and its payload-hash rule.
// Commands are a tagged variant (one struct field populated per kind) rather
// than dynamic dispatch over a base interface, per spec.md §9's guidance
// against polymorphic commands; grounded on the teacher's tagged-struct
// style for wire-ish types (core/common_structs.go's BlockHeader/Block
// split) adapted to a closed command set instead of one struct per token
// standard.

import (
	"bytes"
	"encoding/json"
)

// CommandKind tags which field of Command is populated.
type CommandKind uint8

const (
	CommandCreateAccount CommandKind = iota
	CommandTransferAsset
	CommandAddAssetQuantity
	CommandSubtractAssetQuantity
)

// CreateAccountCommand creates a new account under the given domain.
type CreateAccountCommand struct {
	AccountID string
	PublicKey PublicKey
}

// TransferAssetCommand moves quantity of asset from source to destination.
type TransferAssetCommand struct {
	SrcAccountID string
	DestAccountID string
	AssetID       string
	Amount        string
	Description   string
}

// AddAssetQuantityCommand mints quantity of asset into an account.
type AddAssetQuantityCommand struct {
	AccountID string
	AssetID   string
	Amount    string
}

// SubtractAssetQuantityCommand burns quantity of asset from an account.
type SubtractAssetQuantityCommand struct {
	AccountID string
	AssetID   string
	Amount    string
}

// Command is a tagged variant; exactly one of the typed fields matching Kind
// is populated.
type Command struct {
	Kind CommandKind

	CreateAccount        *CreateAccountCommand
	TransferAsset        *TransferAssetCommand
	AddAssetQuantity     *AddAssetQuantityCommand
	SubtractAssetQuantity *SubtractAssetQuantityCommand
}

// canonical writes the command's payload encoding onto buf.
func (c Command) canonical(buf *bytes.Buffer) {
	buf.WriteByte(byte(c.Kind))
	switch c.Kind {
	case CommandCreateAccount:
		putBytes(buf, []byte(c.CreateAccount.AccountID))
		buf.Write(c.CreateAccount.PublicKey[:])
	case CommandTransferAsset:
		t := c.TransferAsset
		putBytes(buf, []byte(t.SrcAccountID))
		putBytes(buf, []byte(t.DestAccountID))
		putBytes(buf, []byte(t.AssetID))
		putBytes(buf, []byte(t.Amount))
		putBytes(buf, []byte(t.Description))
	case CommandAddAssetQuantity:
		a := c.AddAssetQuantity
		putBytes(buf, []byte(a.AccountID))
		putBytes(buf, []byte(a.AssetID))
		putBytes(buf, []byte(a.Amount))
	case CommandSubtractAssetQuantity:
		s := c.SubtractAssetQuantity
		putBytes(buf, []byte(s.AccountID))
		putBytes(buf, []byte(s.AssetID))
		putBytes(buf, []byte(s.Amount))
	}
}

// touchesAccountAsset reports whether this command involves account in a
// transfer or quantity change of assetID, per the "participation"
// rule in spec.md §4.5.
func (c Command) touchesAccountAsset(account, assetID string) bool {
	switch c.Kind {
	case CommandTransferAsset:
		t := c.TransferAsset
		return t.AssetID == assetID && (t.SrcAccountID == account || t.DestAccountID == account)
	case CommandAddAssetQuantity:
		a := c.AddAssetQuantity
		return a.AssetID == assetID && a.AccountID == account
	case CommandSubtractAssetQuantity:
		s := c.SubtractAssetQuantity
		return s.AssetID == assetID && s.AccountID == account
	default:
		return false
	}
}

// Transaction is immutable once Hash is populated: hash(tx) depends only on
// payload fields (creator, counter, timestamp, commands, quorum), never on
// signatures.
type Transaction struct {
	CreatorAccountID string
	TxCounter        uint64
	CreatedAt        int64
	Commands         []Command
	Quorum           uint16

	Signatures []TxSignature

	hash    HashDigest
	hashSet bool
}

// TxSignature pairs a signer's public key with their signature over the
// transaction's payload hash.
type TxSignature struct {
	Signer    PublicKey
	Signature Signature
}

// canonicalPayload returns the length-prefixed, field-ordered encoding of
// every field except Signatures and the derived hash, per spec.md §4.1.
func (tx *Transaction) canonicalPayload() []byte {
	var buf bytes.Buffer
	putBytes(&buf, []byte(tx.CreatorAccountID))
	putUint64(&buf, tx.TxCounter)
	putUint64(&buf, uint64(tx.CreatedAt))
	putUint16(&buf, uint16(len(tx.Commands)))
	for _, c := range tx.Commands {
		c.canonical(&buf)
	}
	putUint16(&buf, tx.Quorum)
	return buf.Bytes()
}

// Hash computes (and caches) the transaction's payload hash. Re-signing a
// transaction never changes Hash, since signatures are excluded from the
// canonical payload.
func (tx *Transaction) Hash() HashDigest {
	if !tx.hashSet {
		tx.hash = SumPayload(tx.canonicalPayload())
		tx.hashSet = true
	}
	return tx.hash
}

// participates reports whether this transaction is "participation" for
// account under assetIDs per spec.md §4.5: creator equals account, or a
// command in the transaction touches account for one of assetIDs.
func (tx *Transaction) participates(account string, assetIDs []string) bool {
	if tx.CreatorAccountID == account {
		return true
	}
	for _, c := range tx.Commands {
		for _, a := range assetIDs {
			if c.touchesAccountAsset(account, a) {
				return true
			}
		}
	}
	return false
}

// MarshalJSON is a convenience JSON encoding (the client binary's
// send-json-tx mode prints only the hash and does not use it); it is not
// the canonical payload encoding used for hashing.
func (tx *Transaction) MarshalJSON() ([]byte, error) {
	type alias struct {
		CreatorAccountID string        `json:"creator_account_id"`
		TxCounter        uint64        `json:"tx_counter"`
		CreatedAt        int64         `json:"created_at"`
		Commands         []Command     `json:"commands"`
		Quorum           uint16        `json:"quorum"`
		Signatures       []TxSignature `json:"signatures"`
		Hash             string        `json:"hash"`
	}
	return json.Marshal(alias{
		CreatorAccountID: tx.CreatorAccountID,
		TxCounter:        tx.TxCounter,
		CreatedAt:        tx.CreatedAt,
		Commands:         tx.Commands,
		Quorum:           tx.Quorum,
		Signatures:       tx.Signatures,
		Hash:             tx.Hash().Hex(),
	})
}
