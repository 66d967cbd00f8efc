package robocoop

import (
	"github.com/spf13/viper"
)

// Builder holds a bot instance to build
type Builder struct {
	bot *Bot
	err error
}

// NewBot returns a new Builder used to set up a new bot
func NewBot(name string, v *viper.Viper, options ...Option) (sb *Builder) {
	sb = new(Builder)
	sb.bot, sb.err = New(name, v, options...)

	return sb
}

// WithPlugin adds a plugin to the bot
func (sb *Builder) WithPlugin(p *Plugin) *Builder {
	if sb.err != nil {
		return sb
	}

	sb.bot.RegisterPlugin(p)

	return sb
}

// WithPluginErr adds a plugin that has a creation function returning (Plugin, error)
func (sb *Builder) WithPluginErr(p *Plugin, err error) *Builder {
	if sb.err == nil && err != nil {
		sb.err = err
	}

	if sb.err != nil {
		return sb
	}

	sb.bot.RegisterPlugin(p)

	return sb
}

// Build returns the built bot instance. If there was an error during setup,
// the error is returned along with a nil bot
func (sb *Builder) Build() (b *Bot, err error) {
	if sb.err != nil {
		return nil, sb.err
	}

	return sb.bot, sb.err
}
