package storage

import (
	"time"

	"gorm.io/gorm"
)

// Channel is a guild text channel the bot has seen. Messages are only
// captured while Watch is set; turning it off does not purge what was
// already stored.
type Channel struct {
	ID        string `gorm:"primaryKey"`
	GuildID   string `gorm:"index"`
	Name      string
	Watch     bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	Messages  []Message      `gorm:"foreignKey:ChannelID"`
}

// Message is one captured message from a watched channel.
type Message struct {
	ID        string `gorm:"primaryKey"`
	ChannelID string `gorm:"index"`
	Content   string
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	Reactions []Reaction     `gorm:"foreignKey:MessageID"`
}

// Emoji is a reaction emoji. Custom emoji are keyed by their snowflake id;
// unicode emoji have no id, so the name doubles as the key.
type Emoji struct {
	ID        string `gorm:"primaryKey"`
	GuildID   string `gorm:"index"`
	Name      string
	URL       string
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// User is a guild member who reacted to something.
type User struct {
	ID            string `gorm:"primaryKey"`
	Username      string
	Discriminator string
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// Reaction ties one user's emoji to one message. The composite unique index
// keeps at most one live row per (message, user, emoji); removed reactions
// stay behind soft-deleted for historical aggregates.
type Reaction struct {
	ID        uint   `gorm:"primaryKey"`
	MessageID string `gorm:"index:idx_reaction_triple,unique"`
	EmojiID   string `gorm:"index:idx_reaction_triple,unique"`
	UserID    string `gorm:"index:idx_reaction_triple,unique"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
