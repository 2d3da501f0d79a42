package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIdentity is one entry of the bot pool file.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "beginner", "intermediate", "expert"
	AvatarIndex int    `json:"avatar_index"`
}

// Skill maps the identity's difficulty to a SkillLevel.
func (b BotIdentity) Skill() SkillLevel {
	return ParseSkill(b.Difficulty)
}

type registry struct {
	mu         sync.RWMutex
	identities []BotIdentity
	byID       map[string]BotIdentity
}

// fallbackPrefix names bots handed out when no identity file is loaded.
const fallbackPrefix = "bot-"

var (
	pool          = &registry{byID: make(map[string]BotIdentity)}
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot pool from path. Only the first call reads the file.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		var identities []BotIdentity
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}

		pool.mu.Lock()
		defer pool.mu.Unlock()
		pool.identities = identities
		for _, identity := range identities {
			if identity.UserID != "" {
				pool.byID[identity.UserID] = identity
			}
		}
	})
	return loadErr
}

// ProvisionBots makes sure every bot in the pool has a Nakama account tagged with is_bot.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		pool.mu.Lock()
		defer pool.mu.Unlock()

		for i := range pool.identities {
			identity := &pool.identities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"skill":        string(identity.Skill()),
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}

			pool.byID[userID] = *identity
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Skill: %s", identity.DisplayName, userID, identity.Skill())
		}
	})
}

// GetBotConfig returns the identity for a bot user id.
func GetBotConfig(userID string) (BotIdentity, bool) {
	pool.mu.RLock()
	defer pool.mu.RUnlock()
	identity, ok := pool.byID[userID]
	return identity, ok
}

// GetBotUsername returns the username for a bot ID, or an empty string if not a bot.
func GetBotUsername(userID string) string {
	identity, _ := GetBotConfig(userID)
	return identity.Username
}

// GetBotDisplayName returns the display name for a bot ID, falling back to its username.
func GetBotDisplayName(userID string) string {
	identity, ok := GetBotConfig(userID)
	if !ok {
		return ""
	}
	if identity.DisplayName == "" {
		return identity.Username
	}
	return identity.DisplayName
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
func GetBotIdentity(index int) BotIdentity {
	pool.mu.RLock()
	defer pool.mu.RUnlock()
	if len(pool.identities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("%s%d", fallbackPrefix, index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
			Difficulty:  string(SkillIntermediate),
		}
	}
	return pool.identities[index%len(pool.identities)]
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	if _, ok := GetBotConfig(userID); ok {
		return true
	}
	pool.mu.RLock()
	defer pool.mu.RUnlock()
	return len(pool.identities) == 0 && strings.HasPrefix(userID, fallbackPrefix)
}

// GetAllBotIDs returns all provisioned bot user ids.
func GetAllBotIDs() []string {
	pool.mu.RLock()
	defer pool.mu.RUnlock()
	ids := make([]string, 0, len(pool.byID))
	for id := range pool.byID {
		ids = append(ids, id)
	}
	return ids
}
