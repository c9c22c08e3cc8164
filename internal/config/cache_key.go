package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// AttemptCheckpointKey returns the cache key for a user's in-progress attempt snapshot
func (r *CacheKeyStruct) AttemptCheckpointKey(userID int, testID int64) string {
	return fmt.Sprintf("user:%d:test:%d:checkpoint", userID, testID)
}

// CountdownGateKey returns the cache key for the pre-test countdown flag
func (r *CacheKeyStruct) CountdownGateKey(userID int, testID int64) string {
	return fmt.Sprintf("user:%d:test:%d:countdown_done", userID, testID)
}

// InstructionsGateKey returns the cache key for the instructions-accepted flag
func (r *CacheKeyStruct) InstructionsGateKey(userID int, testID int64) string {
	return fmt.Sprintf("user:%d:test:%d:instructions_done", userID, testID)
}

// TestPaperKey returns the cache key for a test's candidate-facing paper payload
func (r *CacheKeyStruct) TestPaperKey(testID int64) string {
	return fmt.Sprintf("test:%d:paper", testID)
}

// IssueCooldownKey returns the cache key for a user's issue-report cooldown window
func (r *CacheKeyStruct) IssueCooldownKey(userID int) string {
	return fmt.Sprintf("user:%d:issue_cooldown", userID)
}

var CacheKey = NewCacheKeyStruct()
