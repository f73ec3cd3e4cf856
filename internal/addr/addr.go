package addr

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Derived 派生结果：记录地址及其bump
type Derived struct {
	Address string
	Bump    uint8
}

// Deriver 记录地址派生器。
// 同一身份永远派生同一地址，不同身份以压倒性概率不会碰撞，
// 派生过程为纯计算，不依赖任何外部状态。
type Deriver struct {
	programID solana.PublicKey
}

// NewDeriver 创建地址派生器
func NewDeriver(programID string) (*Deriver, error) {
	pk, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}
	return &Deriver{programID: pk}, nil
}

// Config 派生平台配置地址
func (d *Deriver) Config(authority solana.PublicKey) (Derived, error) {
	return d.derive([][]byte{
		[]byte("config"),
		authority.Bytes(),
	})
}

// Campaign 派生活动地址
func (d *Deriver) Campaign(farmer solana.PublicKey, campaignID uint64) (Derived, error) {
	return d.derive([][]byte{
		[]byte("campaign"),
		farmer.Bytes(),
		le64(campaignID),
	})
}

// Tier 派生档位地址
func (d *Deriver) Tier(campaign solana.PublicKey, tierID uint8) (Derived, error) {
	return d.derive([][]byte{
		[]byte("tier"),
		campaign.Bytes(),
		{tierID},
	})
}

// Backing 派生出资记录地址
func (d *Deriver) Backing(campaign, backer solana.PublicKey) (Derived, error) {
	return d.derive([][]byte{
		[]byte("backing"),
		campaign.Bytes(),
		backer.Bytes(),
	})
}

// Vault 派生活动托管账户地址。原生币与代币各有独立的托管账户。
func (d *Deriver) Vault(farmer solana.PublicKey, campaignID uint64, native bool) (Derived, error) {
	prefix := "vault_token"
	if native {
		prefix = "vault"
	}
	return d.derive([][]byte{
		[]byte(prefix),
		farmer.Bytes(),
		le64(campaignID),
	})
}

// Verify 校验外部提交的地址与身份字段派生出的地址一致
func (d *Deriver) Verify(presented string, derived Derived) bool {
	return presented == derived.Address
}

func (d *Deriver) derive(seeds [][]byte) (Derived, error) {
	pk, bump, err := solana.FindProgramAddress(seeds, d.programID)
	if err != nil {
		return Derived{}, fmt.Errorf("derive address: %w", err)
	}
	return Derived{Address: pk.String(), Bump: bump}, nil
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
