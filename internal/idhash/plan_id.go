package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// ComputePlanID computes a deterministic plan_id using SHA256.
// Formula: SHA256(owner|mode|target|sorted(assets)|created_at)
// Returns hex-encoded hash (64 characters).
func ComputePlanID(owner, mode, targetCoinType string, assets []string, createdAtMs int64) string {
	sorted := make([]string, len(assets))
	copy(sorted, assets)
	sort.Strings(sorted)

	data := fmt.Sprintf("%s|%s|%s|%s|%d",
		owner,
		mode,
		targetCoinType,
		strings.Join(sorted, ","),
		createdAtMs,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeClaimID computes a deterministic identifier for one stream-claim.
// Formula: SHA256(obligation_id|reserve_index|reward_index|side)
func ComputeClaimID(obligationID string, reserveArrayIndex, rewardIndex int, side string) string {
	data := fmt.Sprintf("%s|%d|%d|%s",
		obligationID,
		reserveArrayIndex,
		rewardIndex,
		side,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
