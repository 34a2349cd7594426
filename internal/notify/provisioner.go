package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	domain "github.com/loupelabs/loupe/pkg/types"
)

// conversationAPI is the slack-go surface the provisioner uses.
type conversationAPI interface {
	CreateConversationContext(ctx context.Context, params slack.CreateConversationParams) (*slack.Channel, error)
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	InviteUsersToConversationContext(ctx context.Context, channelID string, users ...string) (*slack.Channel, error)
}

// TaskChannelStore persists the provisioned channel back to the task row.
type TaskChannelStore interface {
	UpdateTaskChannel(ctx context.Context, taskID, channel, channelID string) error
}

// ChannelProvisioner creates a dedicated public Slack channel per task and
// invites the configured viewers. Provisioning failures are non-fatal: the
// task keeps notifying through the default channel or webhook.
type ChannelProvisioner struct {
	api         conversationAPI
	store       TaskChannelStore
	inviteUsers []string
	log         *slog.Logger
}

// NewChannelProvisioner builds a provisioner. api may be nil when no bot
// token is configured; Ensure is then a no-op.
func NewChannelProvisioner(api conversationAPI, store TaskChannelStore, inviteUsers []string, log *slog.Logger) *ChannelProvisioner {
	if log == nil {
		log = slog.Default()
	}
	return &ChannelProvisioner{api: api, store: store, inviteUsers: inviteUsers, log: log}
}

// Ensure makes sure the task has a Slack channel, creating and persisting
// one on first use. The task is mutated in place so the current cycle
// already routes to the new channel.
func (p *ChannelProvisioner) Ensure(ctx context.Context, task *domain.Task) error {
	if p.api == nil || task.SlackChannel != "" {
		return nil
	}

	name := ChannelName(task.Name)
	if name == "" {
		return fmt.Errorf("task %s: name %q yields an empty channel name", task.ID, task.Name)
	}

	channelID, err := p.createOrResolve(ctx, name)
	if err != nil {
		return fmt.Errorf("provisioning channel %q: %w", name, err)
	}

	p.invite(ctx, channelID)

	if err := p.store.UpdateTaskChannel(ctx, task.ID, name, channelID); err != nil {
		return fmt.Errorf("persisting channel %q: %w", name, err)
	}

	task.SlackChannel = name
	task.SlackChannelID = channelID
	p.log.Info("provisioned slack channel", "task", task.ID, "channel", name, "channel_id", channelID)
	return nil
}

// createOrResolve creates the channel, resolving the id of an existing one
// when the name is already taken.
func (p *ChannelProvisioner) createOrResolve(ctx context.Context, name string) (string, error) {
	ch, err := p.api.CreateConversationContext(ctx, slack.CreateConversationParams{ChannelName: name})
	if err == nil {
		return ch.ID, nil
	}
	if !strings.Contains(err.Error(), "name_taken") {
		return "", err
	}

	cursor := ""
	for {
		channels, next, err := p.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			ExcludeArchived: true,
			Limit:           200,
			Types:           []string{"public_channel"},
			Cursor:          cursor,
		})
		if err != nil {
			return "", fmt.Errorf("listing conversations: %w", err)
		}
		for _, c := range channels {
			if c.Name == name {
				return c.ID, nil
			}
		}
		if next == "" {
			return "", fmt.Errorf("channel %q taken but not found", name)
		}
		cursor = next
	}
}

// invite adds the configured viewers, tolerating users who are already in.
func (p *ChannelProvisioner) invite(ctx context.Context, channelID string) {
	for _, user := range p.inviteUsers {
		if user == "" {
			continue
		}
		if _, err := p.api.InviteUsersToConversationContext(ctx, channelID, user); err != nil {
			if strings.Contains(err.Error(), "already_in_channel") {
				continue
			}
			p.log.Warn("inviting user failed", "user", user, "channel_id", channelID, "error", err)
		}
	}
}

// ChannelName derives a Slack-legal channel name from a task name: lowercase,
// anything outside [a-z0-9_-] becomes a dash, runs collapse, and the result
// is trimmed to Slack's 80-character limit.
func ChannelName(taskName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(taskName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	name := b.String()
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	name = strings.Trim(name, "-")
	if len(name) > 80 {
		name = strings.Trim(name[:80], "-")
	}
	return name
}
