package storage

import (
	_ "embed"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed queries/reaction_info.sql
var reactionInfoSQL string

// ReactionCount is one leaderboard row: a tracked message and the number of
// reactions still standing on it.
type ReactionCount struct {
	ID      string
	Content string
	Count   int
}

// Store is the persistence layer for everything the bot observes.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an opened database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) saveChannel(ch Channel) error {
	// Conflict on id only touches the watch flag (and the guild id needed
	// for message links); the stored name stays whatever was last written.
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watch", "guild_id", "updated_at"}),
	}).Create(&ch).Error
}

// WatchChannel flags a channel for message capture.
func (s *Store) WatchChannel(id, guildID, name string) error {
	return s.saveChannel(Channel{ID: id, GuildID: guildID, Name: name, Watch: true})
}

// UnwatchChannel clears the capture flag. Previously stored messages stay.
func (s *Store) UnwatchChannel(id, guildID, name string) error {
	return s.saveChannel(Channel{ID: id, GuildID: guildID, Name: name, Watch: false})
}

// IsWatched reports whether the channel is currently flagged for capture.
func (s *Store) IsWatched(id string) (bool, error) {
	var n int64
	err := s.db.Model(&Channel{}).Where("id = ? AND watch = ?", id, true).Count(&n).Error
	return n > 0, err
}

// DeleteChannel soft-deletes a channel and every message it owns.
func (s *Store) DeleteChannel(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Channel{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("channel_id = ?", id).Delete(&Message{}).Error
	})
}

// EmojiKey returns the storage identity of an emoji: its custom id, or the
// name for unicode emoji that have none.
func EmojiKey(id, name string) string {
	if id == "" {
		return name
	}
	return id
}

// SaveEmoji upserts an emoji, overwriting name and url on repeat sightings.
// Reaction payloads may omit the guild id; a blank one never clobbers a
// stored value, or SyncGuildEmojis would lose sight of the emoji.
func (s *Store) SaveEmoji(e Emoji) error {
	e.ID = EmojiKey(e.ID, e.Name)
	cols := []string{"name", "url", "updated_at"}
	if e.GuildID != "" {
		cols = append(cols, "guild_id")
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(&e).Error
}

// DeleteEmoji soft-deletes an emoji by id-or-name.
func (s *Store) DeleteEmoji(id, name string) error {
	return s.db.Delete(&Emoji{}, "id = ?", EmojiKey(id, name)).Error
}

// SyncGuildEmojis reconciles stored emoji against the snapshot the gateway
// delivers for a guild: everything present is upserted, stored emoji no
// longer in the snapshot are soft-deleted.
func (s *Store) SyncGuildEmojis(guildID string, emojis []Emoji) error {
	keep := make([]string, 0, len(emojis))
	for _, e := range emojis {
		e.GuildID = guildID
		if err := s.SaveEmoji(e); err != nil {
			return err
		}
		keep = append(keep, EmojiKey(e.ID, e.Name))
	}

	q := s.db.Where("guild_id = ?", guildID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return q.Delete(&Emoji{}).Error
}

// SaveUser upserts a user, overwriting username and discriminator.
func (s *Store) SaveUser(u User) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "discriminator", "updated_at"}),
	}).Create(&u).Error
}

// SaveMessage stores a message if, and only if, its channel is watched at
// write time. Re-delivered messages are ignored, not overwritten.
func (s *Store) SaveMessage(m Message) error {
	watched, err := s.IsWatched(m.ChannelID)
	if err != nil || !watched {
		return err
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error
}

// DeleteMessage soft-deletes one message.
func (s *Store) DeleteMessage(id string) error {
	return s.db.Delete(&Message{}, "id = ?", id).Error
}

// DeleteMessages soft-deletes a batch of messages by id. Ids that were
// never stored are a no-op.
func (s *Store) DeleteMessages(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Where("id IN ?", ids).Delete(&Message{}).Error
}

// AddReaction records a user's reaction on a tracked message, upserting the
// emoji and user rows first. Reactions on messages the store never saw are
// silently dropped. Re-adding a triple that was removed earlier resurrects
// the soft-deleted row, so at most one live row per triple ever exists.
func (s *Store) AddReaction(messageID string, emoji Emoji, user User) error {
	var n int64
	if err := s.db.Model(&Message{}).Where("id = ?", messageID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	if err := s.SaveUser(user); err != nil {
		return err
	}
	if err := s.SaveEmoji(emoji); err != nil {
		return err
	}

	r := Reaction{
		MessageID: messageID,
		EmojiID:   EmojiKey(emoji.ID, emoji.Name),
		UserID:    user.ID,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "emoji_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"deleted_at": nil}),
	}).Create(&r).Error
}

// RemoveReaction soft-deletes one user's reaction with one emoji.
func (s *Store) RemoveReaction(messageID, emojiID, userID string) error {
	return s.db.
		Where("message_id = ? AND emoji_id = ? AND user_id = ?", messageID, emojiID, userID).
		Delete(&Reaction{}).Error
}

// RemoveReactionsForEmoji soft-deletes every reaction with one emoji on a
// message, regardless of who added them.
func (s *Store) RemoveReactionsForEmoji(messageID, emojiID string) error {
	return s.db.
		Where("message_id = ? AND emoji_id = ?", messageID, emojiID).
		Delete(&Reaction{}).Error
}

// RemoveMessageReactions soft-deletes every reaction on a message.
func (s *Store) RemoveMessageReactions(messageID string) error {
	return s.db.Where("message_id = ?", messageID).Delete(&Reaction{}).Error
}

// ReactionInfo returns the leaderboard rows for a channel: every tracked
// message with its count of non-deleted reactions, most reacted first.
// Ties break on message id so pages stay stable between renders.
func (s *Store) ReactionInfo(channelID string) ([]ReactionCount, error) {
	var rows []ReactionCount
	err := s.db.Raw(reactionInfoSQL, channelID).Scan(&rows).Error
	return rows, err
}
