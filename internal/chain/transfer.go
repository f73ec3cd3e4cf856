package chain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/0xjaqbek/freshFarm/internal/config"
	"github.com/0xjaqbek/freshFarm/internal/escrow"
	"github.com/0xjaqbek/freshFarm/internal/logger"
	"github.com/0xjaqbek/freshFarm/internal/model"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// broadcastRetries 广播失败的额外重试次数
const broadcastRetries = 3

var (
	ErrBroadcastFailed    = errors.New("broadcast failed")
	ErrConfirmTimeout     = errors.New("transaction not confirmed in time")
	ErrInvalidDestination = errors.New("invalid destination address")
)

// tokenProgramID SPL Token程序
var tokenProgramID = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

// memoProgramID Memo程序，流水备注用
var memoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

// SolanaTransferer 链上划转实现。出向划转（提现、手续费、退款）由
// 平台托管私钥签名并广播；入金的签名与落账由钱包协作方在调用核心
// 之前完成，这里只登记成功。
type SolanaTransferer struct {
	client        *rpc.Client
	custody       solana.PrivateKey
	confirmations int

	// txMutex 串行化交易广播，避免RPC节点限流
	txMutex sync.Mutex
}

// NewSolanaTransferer 从配置创建链上划转器
func NewSolanaTransferer(cfg config.SolanaConfig) (*SolanaTransferer, error) {
	if cfg.RpcUrl == "" {
		return nil, errors.New("solana.rpc_url is empty in config")
	}
	if cfg.CustodySecret == "" {
		return nil, errors.New("solana.custody_secret is empty in config")
	}

	// 仅支持base58格式
	pk, err := solana.PrivateKeyFromBase58(cfg.CustodySecret)
	if err != nil {
		return nil, errors.New("failed to parse custody_secret as base58: " + err.Error())
	}

	confirmations := cfg.Confirmations
	if confirmations <= 0 {
		confirmations = 30
	}

	return &SolanaTransferer{
		client:        rpc.New(cfg.RpcUrl),
		custody:       pk,
		confirmations: confirmations,
	}, nil
}

// Transfer 执行一次划转并同步等待结果。按方向分流：入金只登记，
// 出金一律从托管账户签名广播，from为账本侧的托管地址，写入Memo对账。
func (t *SolanaTransferer) Transfer(ctx context.Context, from, to string, amount uint64, currency escrow.CurrencyKind, direction model.TransferDirection) (string, error) {
	// 入金：资金由出资人钱包签名划入，协作方已确认落账
	if direction == model.TransferDeposit {
		logger.Debug("Deposit %d (%s) from %s acknowledged", amount, currency.String(), from)
		return "", nil
	}

	custodyKey := t.custody.PublicKey()

	destination, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}

	var instruction solana.Instruction
	if currency.IsNative() {
		instruction = buildNativeTransfer(custodyKey, destination, amount)
	} else {
		mint, err := solana.PublicKeyFromBase58(currency.Mint())
		if err != nil {
			return "", fmt.Errorf("invalid mint: %w", err)
		}
		instruction, err = buildTokenTransfer(custodyKey, destination, mint, amount)
		if err != nil {
			return "", err
		}
	}

	// Memo记录划转方向与账本侧的来源托管地址，便于对账
	memo := solana.NewInstruction(
		memoProgramID,
		solana.AccountMetaSlice{},
		[]byte(fmt.Sprintf("escrow:%s:%s", direction, from)),
	)

	t.txMutex.Lock()
	defer t.txMutex.Unlock()

	bh, err := t.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		bh, err = t.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
		if err != nil {
			return "", errors.New("failed to get latest blockhash")
		}
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction, memo},
		bh.Value.Blockhash,
		solana.TransactionPayer(custodyKey),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(custodyKey) {
			return &t.custody
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	// 有限次广播重试，交易体不变，重复落链由相同签名天然去重
	var sig solana.Signature
	for attempt := 0; ; attempt++ {
		sig, err = t.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		if err == nil {
			break
		}
		if attempt >= broadcastRetries {
			return "", fmt.Errorf("%w: %v", ErrBroadcastFailed, err)
		}
		logger.Warn("Broadcast attempt %d failed: %v", attempt+1, err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
		}
	}

	if err := t.confirm(ctx, sig); err != nil {
		return "", err
	}

	logger.Info("Transfer confirmed: %s -> %s amount=%d signature=%s", from, to, amount, sig.String())
	return sig.String(), nil
}

// confirm 轮询签名状态直至确认。确认不了就报失败，绝不假定成功。
func (t *SolanaTransferer) confirm(ctx context.Context, sig solana.Signature) error {
	for i := 0; i < t.confirmations; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}

		statuses, err := t.client.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			logger.Warn("Failed to check signature status: %v", err)
			continue
		}
		if len(statuses.Value) == 0 || statuses.Value[0] == nil {
			continue
		}
		status := statuses.Value[0]
		if status.Err != nil {
			return fmt.Errorf("transaction failed on chain: %v", status.Err)
		}
		if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return nil
		}
	}
	return ErrConfirmTimeout
}

// buildNativeTransfer 系统程序转账指令
// instruction index: 2 (Transfer), lamports: uint64 little-endian
func buildNativeTransfer(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 2)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	return solana.NewInstruction(
		solana.SystemProgramID,
		solana.AccountMetaSlice{
			{PublicKey: from, IsSigner: true, IsWritable: true},
			{PublicKey: to, IsSigner: false, IsWritable: true},
		},
		data,
	)
}

// buildTokenTransfer SPL Token转账指令
// instruction discriminator: 3 (Transfer), amount: uint64 little-endian
func buildTokenTransfer(from, to, mint solana.PublicKey, amount uint64) (solana.Instruction, error) {
	sourceATA, _, err := solana.FindAssociatedTokenAddress(from, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive source token account: %w", err)
	}
	destATA, _, err := solana.FindAssociatedTokenAddress(to, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive destination token account: %w", err)
	}

	data := append([]byte{3}, make([]byte, 8)...)
	binary.LittleEndian.PutUint64(data[1:], amount)

	return solana.NewInstruction(
		tokenProgramID,
		solana.AccountMetaSlice{
			{PublicKey: sourceATA, IsSigner: false, IsWritable: true}, // Source
			{PublicKey: destATA, IsSigner: false, IsWritable: true},   // Destination
			{PublicKey: from, IsSigner: true, IsWritable: false},      // Owner (authority)
		},
		data,
	), nil
}

// NullTransferer 空划转器。纯账本模式和测试使用：记录每次调用并
// 直接报告成功。
type NullTransferer struct {
	mu    sync.Mutex
	calls []TransferCall
}

// TransferCall 一次划转调用的记录
type TransferCall struct {
	From      string
	To        string
	Amount    uint64
	Currency  string
	Direction model.TransferDirection
}

// NewNullTransferer 创建空划转器
func NewNullTransferer() *NullTransferer {
	return &NullTransferer{}
}

func (t *NullTransferer) Transfer(ctx context.Context, from, to string, amount uint64, currency escrow.CurrencyKind, direction model.TransferDirection) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, TransferCall{From: from, To: to, Amount: amount, Currency: currency.String(), Direction: direction})
	return "", nil
}

// Calls 已记录的划转调用
func (t *NullTransferer) Calls() []TransferCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TransferCall(nil), t.calls...)
}
