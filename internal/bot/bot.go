// Package bot routes Discord gateway events into the store and answers
// mention commands with localized replies and leaderboard embeds.
package bot

import (
	"encoding/json"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"reactboard/internal/lang"
	"reactboard/internal/storage"
)

// session is the slice of the discordgo API the bot calls.
// *discordgo.Session satisfies it; tests substitute a fake.
type session interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

// dictSource yields the currently loaded dictionary; the lang watcher swaps
// the dictionary behind this when its file changes.
type dictSource interface {
	Current() *lang.Dict
}

// Bot wires gateway events to the persistence layer, the command
// dispatcher and the paginator.
type Bot struct {
	api      session
	store    *storage.Store
	dicts    dictSource
	pager    *pager
	commands map[string]commandFunc
	log      *zap.Logger
	author   string // user id credited in leaderboard footers
	selfID   string
	state    *discordgo.State
}

// New builds a bot. It does nothing until Register binds it to a session.
func New(store *storage.Store, dicts dictSource, log *zap.Logger, author string) *Bot {
	b := &Bot{store: store, dicts: dicts, log: log, author: author}
	b.pager = newPager(b)
	b.commands = map[string]commandFunc{
		"watch":   b.cmdWatch,
		"unwatch": b.cmdUnwatch,
		"list":    b.cmdList,
	}
	return b
}

// Register subscribes every handler the bot needs. Call before opening the
// session so no event slips past.
func (b *Bot) Register(s *discordgo.Session) {
	b.api = s
	b.state = s.State
	if s.State.User != nil {
		b.selfID = s.State.User.ID
	}

	s.AddHandler(b.onReady)
	s.AddHandler(b.onChannelDelete)
	s.AddHandler(b.onGuildEmojisUpdate)
	s.AddHandler(b.onMessageCreate)
	s.AddHandler(b.onMessageDelete)
	s.AddHandler(b.onMessageDeleteBulk)
	s.AddHandler(b.onMessageReactionAdd)
	s.AddHandler(b.onMessageReactionRemove)
	s.AddHandler(b.onMessageReactionRemoveAll)
	s.AddHandler(b.onRawEvent)
}

// logErr is the single logging boundary for event forwarding: failures are
// logged and dropped, Discord never sees them and nothing is retried.
func (b *Bot) logErr(op string, err error) {
	if err != nil {
		b.log.Warn("event dropped", zap.String("op", op), zap.Error(err))
	}
}

// checkMessage is the shared guard: the message must come from a real
// member other than this bot (no webhooks, no system messages) and live in
// a guild text channel.
func (b *Bot) checkMessage(m *discordgo.Message) bool {
	if m == nil || m.Author == nil || m.Author.Bot || m.Author.ID == b.selfID {
		return false
	}
	if m.WebhookID != "" || m.GuildID == "" {
		return false
	}
	ch, err := b.channel(m.ChannelID)
	if err != nil {
		return false
	}
	return ch.Type == discordgo.ChannelTypeGuildText
}

// channel resolves a channel from the state cache, falling back to REST.
func (b *Bot) channel(id string) (*discordgo.Channel, error) {
	if b.state != nil {
		if ch, err := b.state.Channel(id); err == nil {
			return ch, nil
		}
	}
	return b.api.Channel(id)
}

func (b *Bot) mentionsSelf(m *discordgo.Message) bool {
	for _, u := range m.Mentions {
		if u.ID == b.selfID {
			return true
		}
	}
	return false
}

// translate resolves a dictionary key for a reply. A key missing from the
// dictionary is sent as-is after a warning, which keeps the bot responsive
// while the dictionary is being fixed.
func (b *Bot) translate(key string) string {
	text, ok := b.dicts.Current().Get(key)
	if !ok {
		b.log.Warn("missing dictionary entry",
			zap.String("key", key), zap.String("code", b.dicts.Current().Code()))
		return key
	}
	return text
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.selfID = r.User.ID
	b.log.Info("client ready", zap.String("user", r.User.String()))
}

func (b *Bot) onChannelDelete(_ *discordgo.Session, e *discordgo.ChannelDelete) {
	if e.Type != discordgo.ChannelTypeGuildText {
		return
	}
	b.logErr("deleteChannel", b.store.DeleteChannel(e.ID))
}

func (b *Bot) onGuildEmojisUpdate(_ *discordgo.Session, e *discordgo.GuildEmojisUpdate) {
	emojis := make([]storage.Emoji, 0, len(e.Emojis))
	for _, em := range e.Emojis {
		emojis = append(emojis, storageEmoji(em.ID, em.Name, e.GuildID))
	}
	b.logErr("syncEmojis", b.store.SyncGuildEmojis(e.GuildID, emojis))
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, e *discordgo.MessageCreate) {
	if !b.checkMessage(e.Message) {
		return
	}

	if b.mentionsSelf(e.Message) {
		b.logErr("command", b.runCommand(e.Message))
		return
	}

	if e.Content == "" {
		return
	}
	b.logErr("saveMessage", b.store.SaveMessage(storage.Message{
		ID:        e.ID,
		ChannelID: e.ChannelID,
		Content:   e.Content,
		CreatedAt: e.Timestamp,
	}))
}

func (b *Bot) onMessageDelete(_ *discordgo.Session, e *discordgo.MessageDelete) {
	// Delete payloads carry no author, so the member part of the guard is
	// unenforceable here; soft-deleting an id that was never stored is a
	// no-op anyway.
	b.logErr("deleteMessage", b.store.DeleteMessage(e.ID))
}

func (b *Bot) onMessageDeleteBulk(_ *discordgo.Session, e *discordgo.MessageDeleteBulk) {
	b.logErr("deleteMessages", b.store.DeleteMessages(e.Messages))
}

func (b *Bot) onMessageReactionAdd(_ *discordgo.Session, e *discordgo.MessageReactionAdd) {
	b.routeReaction(e.MessageReaction, e.Member, true)
}

func (b *Bot) onMessageReactionRemove(_ *discordgo.Session, e *discordgo.MessageReactionRemove) {
	b.routeReaction(e.MessageReaction, nil, false)
}

// routeReaction decides whether a reaction drives the paginator or belongs
// in storage. The bot's own reactions are the affordances it adds itself
// and never route anywhere.
func (b *Bot) routeReaction(r *discordgo.MessageReaction, member *discordgo.Member, added bool) {
	if r.UserID == b.selfID {
		return
	}

	if isPageAction(r.Emoji.Name) {
		st, own, err := b.pager.resolveReply(r.ChannelID, r.MessageID)
		if err != nil {
			b.logErr("paginate", err)
			return
		}
		if own {
			b.logErr("paginate", b.pager.navigate(r.ChannelID, r.MessageID, r.Emoji.Name, st))
			return
		}
	}

	ch, err := b.channel(r.ChannelID)
	if err != nil || ch.Type != discordgo.ChannelTypeGuildText {
		return
	}

	if !added {
		b.logErr("removeReaction", b.store.RemoveReaction(
			r.MessageID, storage.EmojiKey(r.Emoji.ID, r.Emoji.Name), r.UserID))
		return
	}

	var user storage.User
	if member != nil && member.User != nil {
		user = storage.User{
			ID:            member.User.ID,
			Username:      member.User.Username,
			Discriminator: member.User.Discriminator,
		}
	} else {
		u, err := b.api.User(r.UserID)
		if err != nil {
			b.logErr("addReaction", err)
			return
		}
		user = storage.User{ID: u.ID, Username: u.Username, Discriminator: u.Discriminator}
	}
	b.logErr("addReaction", b.store.AddReaction(
		r.MessageID, storageEmoji(r.Emoji.ID, r.Emoji.Name, r.GuildID), user))
}

func (b *Bot) onMessageReactionRemoveAll(_ *discordgo.Session, e *discordgo.MessageReactionRemoveAll) {
	b.logErr("removeAllReactions", b.store.RemoveMessageReactions(e.MessageID))
}

// reactionRemoveEmoji is the MESSAGE_REACTION_REMOVE_EMOJI payload, which
// discordgo does not expose as a typed event.
type reactionRemoveEmoji struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Emoji     struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"emoji"`
}

func (b *Bot) onRawEvent(_ *discordgo.Session, e *discordgo.Event) {
	if e.Type != "MESSAGE_REACTION_REMOVE_EMOJI" {
		return
	}
	var payload reactionRemoveEmoji
	if err := json.Unmarshal(e.RawData, &payload); err != nil {
		b.logErr("removeReactionsForEmoji", err)
		return
	}
	b.logErr("removeReactionsForEmoji", b.store.RemoveReactionsForEmoji(
		payload.MessageID, storage.EmojiKey(payload.Emoji.ID, payload.Emoji.Name)))
}

// storageEmoji maps a gateway emoji to its stored form. Custom emoji get a
// CDN image url; unicode emoji have none.
func storageEmoji(id, name, guildID string) storage.Emoji {
	e := storage.Emoji{ID: id, Name: name, GuildID: guildID}
	if id != "" {
		e.URL = discordgo.EndpointEmoji(id)
	}
	return e
}
