// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Run identifiers

package workspace

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

var (
	idMutex       sync.Mutex
	lastTimestamp string
	lastCounter   int
	now           = time.Now
)

// ResetRunIDState resets the global run ID generation state (for testing)
func ResetRunIDState() {
	idMutex.Lock()
	defer idMutex.Unlock()
	lastTimestamp = ""
	lastCounter = 0
}

// GenerateRunID creates a unique run ID with format: st-YYYYMMDD-HHMM-3hexchars,
// or st-YYYYMMDD-HHMM-NNN for further calls within the same minute
func GenerateRunID() (string, error) {
	idMutex.Lock()
	defer idMutex.Unlock()

	timestamp := now().Format("20060102-1504")

	if timestamp == lastTimestamp {
		lastCounter++
		return fmt.Sprintf("%s-%s-%03d", RunIDPrefix, timestamp, lastCounter), nil
	}

	randomBytes := make([]byte, 2)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	randomHex := hex.EncodeToString(randomBytes)[:3]

	lastTimestamp = timestamp
	lastCounter = 0

	return fmt.Sprintf("%s-%s-%s", RunIDPrefix, timestamp, randomHex), nil
}
