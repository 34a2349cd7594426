package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/loupelabs/loupe/pkg/types"
)

type fakeConversations struct {
	createErr   error
	channels    []slack.Channel
	inviteErr   error
	created     []string
	invited     []string
	listCalls   int
	pageForever bool
}

func (f *fakeConversations) CreateConversationContext(_ context.Context, params slack.CreateConversationParams) (*slack.Channel, error) {
	f.created = append(f.created, params.ChannelName)
	if f.createErr != nil {
		return nil, f.createErr
	}
	ch := &slack.Channel{}
	ch.ID = "C-NEW"
	ch.Name = params.ChannelName
	return ch, nil
}

func (f *fakeConversations) GetConversationsContext(_ context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
	f.listCalls++
	if f.listCalls == 1 && f.pageForever {
		return nil, "cursor-2", nil
	}
	return f.channels, "", nil
}

func (f *fakeConversations) InviteUsersToConversationContext(_ context.Context, channelID string, users ...string) (*slack.Channel, error) {
	f.invited = append(f.invited, users...)
	return nil, f.inviteErr
}

type fakeChannelStore struct {
	taskID    string
	channel   string
	channelID string
	err       error
}

func (f *fakeChannelStore) UpdateTaskChannel(_ context.Context, taskID, channel, channelID string) error {
	f.taskID = taskID
	f.channel = channel
	f.channelID = channelID
	return f.err
}

func TestChannelProvisioner_CreatesAndPersists(t *testing.T) {
	t.Parallel()

	api := &fakeConversations{}
	store := &fakeChannelStore{}
	p := NewChannelProvisioner(api, store, []string{"U111", "U222"}, nil)

	task := &domain.Task{ID: "t1", Name: "Gold Chains Hunt"}
	require.NoError(t, p.Ensure(context.Background(), task))

	assert.Equal(t, []string{"gold-chains-hunt"}, api.created)
	assert.Equal(t, "t1", store.taskID)
	assert.Equal(t, "gold-chains-hunt", store.channel)
	assert.Equal(t, "C-NEW", store.channelID)
	assert.Equal(t, "gold-chains-hunt", task.SlackChannel)
	assert.Equal(t, "C-NEW", task.SlackChannelID)
	assert.Equal(t, []string{"U111", "U222"}, api.invited)
}

func TestChannelProvisioner_SkipsProvisionedTask(t *testing.T) {
	t.Parallel()

	api := &fakeConversations{}
	p := NewChannelProvisioner(api, &fakeChannelStore{}, nil, nil)

	task := &domain.Task{ID: "t1", Name: "Gold Chains", SlackChannel: "gold-chains", SlackChannelID: "C1"}
	require.NoError(t, p.Ensure(context.Background(), task))
	assert.Empty(t, api.created)
}

func TestChannelProvisioner_NilAPIIsNoop(t *testing.T) {
	t.Parallel()

	p := NewChannelProvisioner(nil, &fakeChannelStore{}, nil, nil)
	task := &domain.Task{ID: "t1", Name: "Gold Chains"}
	require.NoError(t, p.Ensure(context.Background(), task))
	assert.Empty(t, task.SlackChannel)
}

func TestChannelProvisioner_NameTakenResolvesExisting(t *testing.T) {
	t.Parallel()

	existing := slack.Channel{}
	existing.ID = "C-OLD"
	existing.Name = "gold-chains-hunt"

	api := &fakeConversations{
		createErr:   errors.New("name_taken"),
		channels:    []slack.Channel{existing},
		pageForever: true,
	}
	store := &fakeChannelStore{}
	p := NewChannelProvisioner(api, store, nil, nil)

	task := &domain.Task{ID: "t1", Name: "Gold Chains Hunt"}
	require.NoError(t, p.Ensure(context.Background(), task))

	assert.Equal(t, "C-OLD", task.SlackChannelID)
	assert.Equal(t, 2, api.listCalls, "should follow the pagination cursor")
}

func TestChannelProvisioner_NameTakenButMissing(t *testing.T) {
	t.Parallel()

	api := &fakeConversations{createErr: errors.New("name_taken")}
	p := NewChannelProvisioner(api, &fakeChannelStore{}, nil, nil)

	task := &domain.Task{ID: "t1", Name: "Gold Chains"}
	err := p.Ensure(context.Background(), task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestChannelProvisioner_CreateFailure(t *testing.T) {
	t.Parallel()

	api := &fakeConversations{createErr: errors.New("restricted_action")}
	p := NewChannelProvisioner(api, &fakeChannelStore{}, nil, nil)

	task := &domain.Task{ID: "t1", Name: "Gold Chains"}
	require.Error(t, p.Ensure(context.Background(), task))
	assert.Empty(t, task.SlackChannel)
}

func TestChannelProvisioner_AlreadyInChannelIgnored(t *testing.T) {
	t.Parallel()

	api := &fakeConversations{inviteErr: errors.New("already_in_channel")}
	store := &fakeChannelStore{}
	p := NewChannelProvisioner(api, store, []string{"U111"}, nil)

	task := &domain.Task{ID: "t1", Name: "Gold Chains"}
	require.NoError(t, p.Ensure(context.Background(), task))
	assert.Equal(t, "C-NEW", task.SlackChannelID)
}

func TestChannelProvisioner_PersistFailure(t *testing.T) {
	t.Parallel()

	api := &fakeConversations{}
	store := &fakeChannelStore{err: errors.New("connection refused")}
	p := NewChannelProvisioner(api, store, nil, nil)

	task := &domain.Task{ID: "t1", Name: "Gold Chains"}
	require.Error(t, p.Ensure(context.Background(), task))
	assert.Empty(t, task.SlackChannel, "task should not be mutated when persistence fails")
}

func TestChannelName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Gold Chains Hunt", "gold-chains-hunt"},
		{"14K+ Estate Lots!!", "14k-estate-lots"},
		{"  spaced   out  ", "spaced-out"},
		{"already-legal_name", "already-legal_name"},
		{"Émeraudes & Saphirs", "meraudes-saphirs"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChannelName(tt.in), "input %q", tt.in)
	}
}

func TestChannelName_TruncatesTo80(t *testing.T) {
	t.Parallel()

	name := ChannelName(strings.Repeat("long task name ", 10))
	assert.LessOrEqual(t, len(name), 80)
	assert.NotEmpty(t, name)
	assert.False(t, strings.HasSuffix(name, "-"))
}
