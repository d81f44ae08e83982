package bot

import (
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var mentionPattern = regexp.MustCompile(`<@!?\d+>`)

// commandFunc runs one resolved command. It returns the dictionary key to
// reply with; an empty key means the command already produced its own reply.
type commandFunc func(m *discordgo.Message, ch *discordgo.Channel) (string, error)

// runCommand executes a mention command and sends the localized outcome.
func (b *Bot) runCommand(m *discordgo.Message) error {
	key, err := b.execute(m)
	if err != nil || key == "" {
		return err
	}
	_, err = b.api.ChannelMessageSend(m.ChannelID, b.translate(key))
	return err
}

// execute resolves a mention command through the fixed dispatch table. The
// command word is whatever the active dictionary translates the internal
// command keys to, matched case-insensitively.
func (b *Bot) execute(m *discordgo.Message) (string, error) {
	perms, err := b.api.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		return "", err
	}
	if perms&discordgo.PermissionManageChannels == 0 {
		return "insufficientPermissions", nil
	}

	text := strings.ToLower(strings.TrimSpace(mentionPattern.ReplaceAllString(m.Content, "")))
	if text == "" {
		return "missingCommand", nil
	}

	key, ok := b.dicts.Current().Reverse(text)
	if !ok {
		return "unknownCommand", nil
	}
	cmd, ok := b.commands[key]
	if !ok {
		return "unknownCommand", nil
	}

	ch, err := b.channel(m.ChannelID)
	if err != nil {
		return "", err
	}
	return cmd(m, ch)
}

func (b *Bot) cmdWatch(_ *discordgo.Message, ch *discordgo.Channel) (string, error) {
	if err := b.store.WatchChannel(ch.ID, ch.GuildID, ch.Name); err != nil {
		b.log.Warn("watch failed", zap.String("channel", ch.ID), zap.Error(err))
		return "watchFailed", nil
	}
	return "watchSucceeded", nil
}

func (b *Bot) cmdUnwatch(_ *discordgo.Message, ch *discordgo.Channel) (string, error) {
	if err := b.store.UnwatchChannel(ch.ID, ch.GuildID, ch.Name); err != nil {
		b.log.Warn("unwatch failed", zap.String("channel", ch.ID), zap.Error(err))
		return "unwatchFailed", nil
	}
	return "unwatchSucceeded", nil
}

func (b *Bot) cmdList(_ *discordgo.Message, ch *discordgo.Channel) (string, error) {
	watched, err := b.store.IsWatched(ch.ID)
	if err != nil {
		return "", err
	}
	if !watched {
		return "channelDeafen", nil
	}
	return "", b.pager.sendNew(ch)
}
