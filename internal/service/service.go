package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/config"
	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/store"
	"github.com/Gopher0727/Himo/utils/ratelimit"
)

// BotOptions configures the auto-reply bot.
type BotOptions struct {
	Enabled  bool
	Name     string
	Reply    string
	Triggers []string
}

// Triggered reports whether content should get a bot reply.
func (b BotOptions) Triggered(content string) bool {
	if !b.Enabled {
		return false
	}
	for _, t := range b.Triggers {
		if t != "" && strings.Contains(content, t) {
			return true
		}
	}
	return false
}

// Options carries everything the services need besides the store.
// Zero values are usable: system clock, random ids, no limiter, no bot.
type Options struct {
	AdminSecretHash string
	EnforceBans     bool
	Bot             BotOptions

	Limiter     ratelimit.Limiter
	LoginRule   ratelimit.Rule
	MessageRule ratelimit.Rule

	Clock    Clock
	UniqueID UniqueIDFunc
	Logger   *zap.Logger
}

func (o *Options) withDefaults() {
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	if o.UniqueID == nil {
		o.UniqueID = RandomUniqueID
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// OptionsFromConfig maps the loaded configuration onto service options.
// The plain admin secret is hashed here so only the hash is kept in memory.
func OptionsFromConfig(cfg *config.Config, limiter ratelimit.Limiter, logger *zap.Logger) (Options, error) {
	hash := cfg.Admin.SecretHash
	if hash == "" {
		h, err := hashPassword(cfg.Admin.Secret)
		if err != nil {
			return Options{}, fmt.Errorf("failed to hash admin secret: %w", err)
		}
		hash = h
	}

	opts := Options{
		AdminSecretHash: hash,
		EnforceBans:     cfg.Moderation.EnforceBans,
		Bot: BotOptions{
			Enabled:  cfg.Bot.Enabled,
			Name:     cfg.Bot.Name,
			Reply:    cfg.Bot.Reply,
			Triggers: cfg.Bot.Triggers,
		},
		Logger: logger,
	}
	if cfg.RateLimit.Enabled && limiter != nil {
		opts.Limiter = limiter
		opts.LoginRule = ratelimit.PerMinute(cfg.RateLimit.LoginsPerMinute)
		opts.MessageRule = ratelimit.PerMinute(cfg.RateLimit.MessagesPerMinute)
	}
	return opts, nil
}

// Services bundles the mutation engine.
type Services struct {
	Auth       IAuthService
	Friends    IFriendService
	Chats      IChatService
	Messages   IMessageService
	Moderation IModerationService
	Prefixes   IPrefixService
	Reports    IReportService
}

func New(st store.IStore, opts Options) *Services {
	opts.withDefaults()
	return &Services{
		Auth:       NewAuthService(st, opts),
		Friends:    NewFriendService(st, opts.Logger),
		Chats:      NewChatService(st, opts.Clock, opts.Logger),
		Messages:   NewMessageService(st, opts),
		Moderation: NewModerationService(st, opts.Logger),
		Prefixes:   NewPrefixService(st, opts.Logger),
		Reports:    NewReportService(st, opts.Clock, opts.Logger),
	}
}

// requireAdmin fails with ErrUnauthorized unless actorID is an existing admin.
func requireAdmin(c *store.Collections, actorID int64) error {
	actor := c.UserByID(actorID)
	if actor == nil || !actor.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

// allow consults the limiter; a disabled rule or missing limiter always passes.
func allow(ctx context.Context, limiter ratelimit.Limiter, rule ratelimit.Rule, key string) error {
	if limiter == nil || rule.Disabled() {
		return nil
	}
	ok, err := limiter.Allow(ctx, key, rule.Limit, rule.Window)
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}

func cloneUsers(users []model.User) []model.User {
	out := make([]model.User, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}
	return out
}
