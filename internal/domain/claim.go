package domain

// ClaimMode selects what happens to claimed rewards.
type ClaimMode string

const (
	// ClaimModeWallet claims every reward asset as-is and sends the coins
	// to the owner.
	ClaimModeWallet ClaimMode = "CLAIM_TO_WALLET"
	// ClaimModeDeposit claims every reward asset as-is and redeposits each
	// as collateral.
	ClaimModeDeposit ClaimMode = "CLAIM_AND_DEPOSIT"
	// ClaimModeSwapWallet consolidates all rewards into the target asset
	// and sends the merged coin to the owner.
	ClaimModeSwapWallet ClaimMode = "SWAP_TO_WALLET"
	// ClaimModeSwapDeposit consolidates all rewards into the target asset
	// and redeposits the merged coin as collateral.
	ClaimModeSwapDeposit ClaimMode = "SWAP_AND_DEPOSIT"
)

// String returns the string representation of ClaimMode.
func (m ClaimMode) String() string {
	return string(m)
}

// IsValid checks if the mode is a valid value.
func (m ClaimMode) IsValid() bool {
	switch m {
	case ClaimModeWallet, ClaimModeDeposit, ClaimModeSwapWallet, ClaimModeSwapDeposit:
		return true
	}
	return false
}

// IsSwapping reports whether the mode consolidates into a single asset.
func (m ClaimMode) IsSwapping() bool {
	return m == ClaimModeSwapWallet || m == ClaimModeSwapDeposit
}

// IsDepositing reports whether the mode redeposits the result as collateral.
func (m ClaimMode) IsDepositing() bool {
	return m == ClaimModeDeposit || m == ClaimModeSwapDeposit
}

// CommandKind identifies one sub-operation inside a claim plan.
type CommandKind string

const (
	// CommandClaim extracts one stream's accrued rewards into a coin.
	CommandClaim CommandKind = "CLAIM"
	// CommandClaimAndDeposit claims one obligation's streams and
	// redeposits each asset directly, without producing loose coins.
	CommandClaimAndDeposit CommandKind = "CLAIM_AND_DEPOSIT"
	// CommandClaimAndSend claims one obligation's streams and transfers
	// each asset to the owner directly.
	CommandClaimAndSend CommandKind = "CLAIM_AND_SEND"
	// CommandSwap routes one coin into the target asset.
	CommandSwap CommandKind = "SWAP"
	// CommandMergeCoins folds coins of the target asset into one.
	CommandMergeCoins CommandKind = "MERGE_COINS"
	// CommandDeposit deposits the final coin as collateral.
	CommandDeposit CommandKind = "DEPOSIT"
	// CommandTransfer sends the final coin to the owner.
	CommandTransfer CommandKind = "TRANSFER"
)

// Command is one ordered sub-operation of a claim plan. Later commands
// consume coins produced by earlier ones, so order is load-bearing.
type Command struct {
	Kind CommandKind

	// ObligationID is set for claim-family commands.
	ObligationID string
	// Claims lists the stream-claims this command extracts.
	Claims []RewardClaim

	// CoinType is the asset the command operates on.
	CoinType string
	// Route is set for swap commands.
	Route *Route
	// SlippagePct is the tolerance applied to swap commands.
	SlippagePct float64

	// Recipient is set for transfer commands.
	Recipient string
}

// SkippedAsset records one asset excluded from a plan and why.
type SkippedAsset struct {
	CoinType string
	Reason   string
}

// ClaimPlan is an ordered, atomic unit of work for one signing round.
// A plan either fully succeeds or is discarded before submission; no
// partial-plan state is ever persisted.
type ClaimPlan struct {
	ID             string
	OwnerID        string
	Mode           ClaimMode
	TargetCoinType string // set for swapping modes

	Commands []Command

	// AssetsRequested is how many distinct reward assets the source
	// reward map contained; AssetsConsolidated is how many made it into
	// the plan. Skipped explains the difference.
	AssetsRequested    int
	AssetsConsolidated int
	Skipped            []SkippedAsset

	CreatedAtMs int64
}

// ClaimRecord is the persisted outcome of one executed claim plan.
type ClaimRecord struct {
	PlanID             string
	OwnerID            string
	Mode               string
	TargetCoinType     *string // nullable, set for swapping modes
	AssetsRequested    int
	AssetsConsolidated int
	Status             string // SUBMITTED | CONFIRMED | FAILED
	Digest             *string
	SubmittedAtMs      int64
}

// Claim record status constants.
const (
	ClaimStatusSubmitted = "SUBMITTED"
	ClaimStatusConfirmed = "CONFIRMED"
	ClaimStatusFailed    = "FAILED"
)
