package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"

	"reactboard/internal/format"
)

// Page actions, encoded as the navigation emoji attached to leaderboard
// replies.
const (
	actionFirst   = "⏮"
	actionPrev    = "⏪"
	actionRefresh = "🔄"
	actionNext    = "⏩"
	actionLast    = "⏭"
)

var pageActions = []string{actionFirst, actionPrev, actionRefresh, actionNext, actionLast}

const pageSize = 25

var pageMarker = regexp.MustCompile(`\((\d+)/(\d+)\)`)

type pageState struct {
	current int
	total   int
}

// pager renders leaderboard embeds and tracks which page each reply shows.
// Sessions live in memory; for replies that predate the current process the
// position is recovered from the (current/total) marker in the embed title.
type pager struct {
	bot *Bot

	mu       sync.Mutex
	sessions map[string]pageState // reply message id → position
}

func newPager(b *Bot) *pager {
	return &pager{bot: b, sessions: make(map[string]pageState)}
}

func (p *pager) remember(messageID string, st pageState) {
	p.mu.Lock()
	p.sessions[messageID] = st
	p.mu.Unlock()
}

func (p *pager) lookup(messageID string) (pageState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.sessions[messageID]
	return st, ok
}

func isPageAction(name string) bool {
	for _, a := range pageActions {
		if a == name {
			return true
		}
	}
	return false
}

// nextPage applies a navigation action to the current position.
func nextPage(action string, st pageState) (int, error) {
	switch action {
	case actionFirst:
		return 1, nil
	case actionPrev:
		return st.current - 1, nil
	case actionRefresh:
		return st.current, nil
	case actionNext:
		return st.current + 1, nil
	case actionLast:
		return st.total, nil
	}
	return 0, fmt.Errorf("unknown page action %q", action)
}

// parseMarker recovers a position from a rendered embed title.
func parseMarker(title string) (pageState, error) {
	m := pageMarker.FindStringSubmatch(title)
	if m == nil {
		return pageState{}, fmt.Errorf("no page marker in title %q", title)
	}
	current, _ := strconv.Atoi(m[1])
	total, _ := strconv.Atoi(m[2])
	return pageState{current: current, total: total}, nil
}

// sendNew renders page 1 into a fresh reply and attaches the navigation
// emoji. An empty leaderboard sends nothing.
func (p *pager) sendNew(ch *discordgo.Channel) error {
	embed, total, err := p.render(ch, 1)
	if err != nil || embed == nil {
		return err
	}

	msg, err := p.bot.api.ChannelMessageSendEmbed(ch.ID, embed)
	if err != nil {
		return err
	}
	p.remember(msg.ID, pageState{current: 1, total: total})

	for _, a := range pageActions {
		if err := p.bot.api.MessageReactionAdd(ch.ID, msg.ID, a); err != nil {
			return err
		}
	}
	return nil
}

// resolveReply decides whether a message is one of the bot's leaderboard
// replies and, if so, yields its position: from the live session when there
// is one, otherwise (after a restart) by fetching the reply once and
// parsing the (current/total) marker out of its title.
func (p *pager) resolveReply(channelID, messageID string) (pageState, bool, error) {
	if st, ok := p.lookup(messageID); ok {
		return st, true, nil
	}

	msg, err := p.bot.api.ChannelMessage(channelID, messageID)
	if err != nil {
		return pageState{}, false, err
	}
	if msg.Author == nil || msg.Author.ID != p.bot.selfID || len(msg.Embeds) == 0 {
		return pageState{}, false, nil
	}

	st, err := parseMarker(msg.Embeds[0].Title)
	if err != nil {
		return pageState{}, true, err
	}
	return st, true, nil
}

// navigate recomputes the page for an existing reply and edits it in
// place. Out-of-range requests leave the reply untouched.
func (p *pager) navigate(channelID, messageID, action string, st pageState) error {
	page, err := nextPage(action, st)
	if err != nil {
		return err
	}

	ch, err := p.bot.channel(channelID)
	if err != nil {
		return err
	}
	embed, total, err := p.render(ch, page)
	if err != nil {
		return err
	}
	if embed == nil {
		return nil // out of range or nothing tracked: leave the reply as is
	}

	if _, err := p.bot.api.ChannelMessageEditEmbed(channelID, messageID, embed); err != nil {
		return err
	}
	p.remember(messageID, pageState{current: page, total: total})
	return nil
}

// render builds the leaderboard embed for one page. It returns a nil embed
// when the leaderboard is empty or the page falls outside [1, total].
func (p *pager) render(ch *discordgo.Channel, page int) (*discordgo.MessageEmbed, int, error) {
	rows, err := p.bot.store.ReactionInfo(ch.ID)
	if err != nil {
		return nil, 0, err
	}
	total := (len(rows) + pageSize - 1) / pageSize
	if len(rows) == 0 || page < 1 || page > total {
		return nil, total, nil
	}

	author, err := p.bot.api.User(p.bot.author)
	if err != nil {
		return nil, 0, err
	}

	title := format.Interpolate(p.bot.translate("mostReacted"), map[string]interface{}{
		"current": page,
		"total":   total,
	})
	countText := p.bot.translate("reactionCount")

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}

	fields := make([]*discordgo.MessageEmbedField, 0, end-start)
	for _, row := range rows[start:end] {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: format.Interpolate(countText, map[string]interface{}{"count": row.Count}),
			Value: fmt.Sprintf("[%s](https://discord.com/channels/%s/%s/%s)",
				format.Ellipsis(row.Content, 50), ch.GuildID, ch.ID, row.ID),
		})
	}

	return &discordgo.MessageEmbed{
		Title:  title,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: format.Interpolate(p.bot.translate("madeBy"), map[string]interface{}{
				"author": author.String(),
			}),
			IconURL: author.AvatarURL(""),
		},
	}, total, nil
}
