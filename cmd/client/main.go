package main

// main.go – the client binary: generate-genesis, new-account, send-json-tx,
// send-json-query and interactive modes, per spec.md §6. This binary
// exercises the core data model client-side (building and hashing
// Transactions/Blocks, generating Ed25519 keys) without a transport: the
// reliable Network and the transaction-processor pipeline it would submit
// through are external collaborators out of scope here. Grounded on the
// teacher's cobra-subcommand CLI style.

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"yac-network/core"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "yac-client",
		Short: "client utilities for a YAC network",
	}
	root.AddCommand(
		newGenerateGenesisCommand(),
		newNewAccountCommand(),
		newSendJSONTxCommand(),
		newSendJSONQueryCommand(),
		newInteractiveCommand(),
	)
	return root
}

func newGenerateGenesisCommand() *cobra.Command {
	var createdAt int64
	cmd := &cobra.Command{
		Use:   "generate-genesis",
		Short: "emit a genesis block as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			genesis := core.NewBlock(1, core.ZeroHash, createdAt, nil)
			return json.NewEncoder(os.Stdout).Encode(genesisView{
				Height:     genesis.Height,
				PrevHash:   genesis.PrevHash,
				MerkleRoot: genesis.MerkleRoot,
				Hash:       genesis.Hash(),
			})
		},
	}
	cmd.Flags().Int64Var(&createdAt, "created-at", 0, "genesis block timestamp (unix seconds)")
	return cmd
}

type genesisView struct {
	Height     uint64          `json:"height"`
	PrevHash   core.HashDigest `json:"prev_hash"`
	MerkleRoot core.HashDigest `json:"merkle_root"`
	Hash       core.HashDigest `json:"hash"`
}

func newNewAccountCommand() *cobra.Command {
	var accountID string
	cmd := &cobra.Command{
		Use:   "new-account",
		Short: "generate an Ed25519 keypair for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if accountID == "" {
				return exitValidation("new-account: --account-id is required")
			}
			pub, priv, err := ed25519.GenerateKey(nil)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(struct {
				AccountID  string `json:"account_id"`
				PublicKey  string `json:"public_key"`
				PrivateKey string `json:"private_key"`
			}{
				AccountID:  accountID,
				PublicKey:  hex.EncodeToString(pub),
				PrivateKey: hex.EncodeToString(priv),
			})
		},
	}
	cmd.Flags().StringVar(&accountID, "account-id", "", "account id to create, e.g. alice@domain")
	return cmd
}

// jsonCommand mirrors core.Command's tagged variant in a flat
// client-facing JSON shape selected by Kind; send-json-tx translates these into
// core.Command values before hashing.
type jsonCommand struct {
	Kind          string `json:"kind"`
	AccountID     string `json:"account_id,omitempty"`
	SrcAccountID  string `json:"src_account_id,omitempty"`
	DestAccountID string `json:"dest_account_id,omitempty"`
	AssetID       string `json:"asset_id,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Description   string `json:"description,omitempty"`
	PublicKey     string `json:"public_key,omitempty"`
}

type jsonTransaction struct {
	CreatorAccountID string        `json:"creator_account_id"`
	TxCounter        uint64        `json:"tx_counter"`
	CreatedAt        int64         `json:"created_at"`
	Commands         []jsonCommand `json:"commands"`
	Quorum           uint16        `json:"quorum"`
}

func (jt jsonTransaction) toCore() (*core.Transaction, error) {
	tx := &core.Transaction{
		CreatorAccountID: jt.CreatorAccountID,
		TxCounter:        jt.TxCounter,
		CreatedAt:        jt.CreatedAt,
		Quorum:           jt.Quorum,
	}
	for _, jc := range jt.Commands {
		cmd, err := jc.toCore()
		if err != nil {
			return nil, err
		}
		tx.Commands = append(tx.Commands, cmd)
	}
	return tx, nil
}

func (jc jsonCommand) toCore() (core.Command, error) {
	switch jc.Kind {
	case "create_account":
		pub, err := decodePublicKey(jc.PublicKey)
		if err != nil {
			return core.Command{}, err
		}
		return core.Command{
			Kind:          core.CommandCreateAccount,
			CreateAccount: &core.CreateAccountCommand{AccountID: jc.AccountID, PublicKey: pub},
		}, nil
	case "transfer_asset":
		return core.Command{
			Kind: core.CommandTransferAsset,
			TransferAsset: &core.TransferAssetCommand{
				SrcAccountID: jc.SrcAccountID, DestAccountID: jc.DestAccountID,
				AssetID: jc.AssetID, Amount: jc.Amount, Description: jc.Description,
			},
		}, nil
	case "add_asset_quantity":
		return core.Command{
			Kind:             core.CommandAddAssetQuantity,
			AddAssetQuantity: &core.AddAssetQuantityCommand{AccountID: jc.AccountID, AssetID: jc.AssetID, Amount: jc.Amount},
		}, nil
	case "subtract_asset_quantity":
		return core.Command{
			Kind:                  core.CommandSubtractAssetQuantity,
			SubtractAssetQuantity: &core.SubtractAssetQuantityCommand{AccountID: jc.AccountID, AssetID: jc.AssetID, Amount: jc.Amount},
		}, nil
	default:
		return core.Command{}, exitValidation(fmt.Sprintf("send-json-tx: unknown command kind %q", jc.Kind))
	}
}

func decodePublicKey(s string) (core.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return core.PublicKey{}, exitValidation("send-json-tx: invalid public_key hex")
	}
	return core.PublicKeyFromBytes(b)
}

func newSendJSONTxCommand() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "send-json-tx",
		Short: "validate and hash a JSON-encoded transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(filePath)
			if err != nil {
				return err
			}
			var jt jsonTransaction
			if err := json.Unmarshal(raw, &jt); err != nil {
				return exitValidation(fmt.Sprintf("send-json-tx: invalid JSON: %v", err))
			}
			if jt.CreatorAccountID == "" {
				return exitValidation("send-json-tx: creator_account_id is required")
			}
			if len(jt.Commands) == 0 {
				return exitValidation("send-json-tx: at least one command is required")
			}
			tx, err := jt.toCore()
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, tx.Hash().Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path to the JSON transaction, or - / empty for stdin")
	return cmd
}

type jsonQuery struct {
	AccountID string   `json:"account_id"`
	AssetIDs  []string `json:"asset_ids,omitempty"`
	Cursor    string   `json:"cursor,omitempty"`
	Limit     uint16   `json:"limit"`
}

func newSendJSONQueryCommand() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "send-json-query",
		Short: "validate a JSON-encoded account/asset history query",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(filePath)
			if err != nil {
				return err
			}
			var q jsonQuery
			if err := json.Unmarshal(raw, &q); err != nil {
				return exitValidation(fmt.Sprintf("send-json-query: invalid JSON: %v", err))
			}
			if q.AccountID == "" {
				return exitValidation("send-json-query: account_id is required")
			}
			pager := core.NewPager(core.ZeroHash, q.Limit)
			if q.Cursor != "" {
				h, err := core.HashDigestFromHex(q.Cursor)
				if err != nil {
					return exitValidation("send-json-query: invalid cursor hex")
				}
				pager.TxHash = h
			}
			fmt.Fprintf(os.Stdout, "query ok: account=%s assets=%v limit=%d cursor=%s\n",
				q.AccountID, q.AssetIDs, pager.Limit, pager.TxHash.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path to the JSON query, or - / empty for stdin")
	return cmd
}

func newInteractiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "interactive shell (not implemented: out of scope for this build)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitValidation("interactive: the interactive shell is an external collaborator not implemented by this build")
		},
	}
}

func readInput(filePath string) ([]byte, error) {
	if filePath == "" || filePath == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(filePath)
}

// validationError marks a failure that should exit non-zero without a Go
// stack trace, per spec.md §6's "exit codes: 0 success, non-zero on
// validation failure".
type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

func exitValidation(msg string) error { return &validationError{msg: msg} }
