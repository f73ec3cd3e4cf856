package escrow

import "errors"

// OpError 操作错误。Kind 是稳定的错误种类标识，跨越对外接口边界；
// 同一失败路径永远返回同一种类，核心内部不吞错误。
type OpError struct {
	Kind    string
	Message string
}

func (e *OpError) Error() string { return e.Message }

var (
	ErrMathOverflow             = &OpError{"MathOverflow", "math overflow occurred"}
	ErrUnauthorized             = &OpError{"Unauthorized", "unauthorized access"}
	ErrInvalidFee               = &OpError{"InvalidFee", "invalid fee percentage"}
	ErrTitleTooLong             = &OpError{"TitleTooLong", "title too long (max 64 chars)"}
	ErrDescriptionTooLong       = &OpError{"DescriptionTooLong", "description too long (max 256 chars)"}
	ErrNameTooLong              = &OpError{"NameTooLong", "name too long (max 32 chars)"}
	ErrBenefitsTooLong          = &OpError{"BenefitsTooLong", "benefits too long (max 256 chars)"}
	ErrInvalidAmount            = &OpError{"InvalidAmount", "invalid amount"}
	ErrInvalidDuration          = &OpError{"InvalidDuration", "invalid duration"}
	ErrInvalidTierRange         = &OpError{"InvalidTierRange", "invalid tier range"}
	ErrPlatformInactive         = &OpError{"PlatformInactive", "platform is inactive"}
	ErrCampaignNotActive        = &OpError{"CampaignNotActive", "campaign is not active"}
	ErrCampaignFinalized        = &OpError{"CampaignFinalized", "campaign is already finalized"}
	ErrCampaignNotStarted       = &OpError{"CampaignNotStarted", "campaign has not started yet"}
	ErrCampaignEnded            = &OpError{"CampaignEnded", "campaign has ended"}
	ErrCampaignNotEnded         = &OpError{"CampaignNotEnded", "campaign has not ended yet"}
	ErrCampaignNotFinalized     = &OpError{"CampaignNotFinalized", "campaign is not finalized"}
	ErrCampaignAlreadyFinalized = &OpError{"CampaignAlreadyFinalized", "campaign already finalized"}
	ErrInvalidTier              = &OpError{"InvalidTier", "invalid tier"}
	ErrAmountBelowMinimum       = &OpError{"AmountBelowMinimum", "amount below minimum"}
	ErrAmountAboveMaximum       = &OpError{"AmountAboveMaximum", "amount above maximum"}
	ErrTierFull                 = &OpError{"TierFull", "tier is full"}
	ErrInvalidMint              = &OpError{"InvalidMint", "invalid mint"}
	ErrGoalNotReached           = &OpError{"GoalNotReached", "goal not reached"}
	ErrGoalReached              = &OpError{"GoalReached", "goal was reached, no refunds available"}
	ErrAlreadyRefunded          = &OpError{"AlreadyRefunded", "already refunded"}
	ErrNoFundsToWithdraw        = &OpError{"NoFundsToWithdraw", "no funds to withdraw"}
	ErrDuplicateBacking         = &OpError{"DuplicateBacking", "backer already has a backing for this campaign"}
	ErrAlreadyExists            = &OpError{"AlreadyExists", "record already exists"}
	ErrNotFound                 = &OpError{"NotFound", "record not found"}
	ErrInsufficientCustody      = &OpError{"InsufficientCustody", "custody balance insufficient"}
	ErrConflict                 = &OpError{"Conflict", "concurrent update conflict, retry"}
	ErrTransferFailed           = &OpError{"TransferFailed", "currency transfer failed"}
)

// KindOf 提取错误种类，非操作错误返回 "Internal"
func KindOf(err error) string {
	var op *OpError
	if errors.As(err, &op) {
		return op.Kind
	}
	return "Internal"
}
