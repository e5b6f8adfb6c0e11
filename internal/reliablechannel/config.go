package reliablechannel

import (
	"time"

	"github.com/chewbranca/networkedphysics-gdc2015/internal/message"
)

// Config holds the channel's tunable parameters, built with functional
// options. packetBudget is deliberately not here: it is a per-call
// parameter of GetData (see DESIGN.md's resolution of the corresponding
// open question).
type Config struct {
	resendRate           time.Duration
	sendQueueSize        int
	receiveQueueSize     int
	sentPacketsSize      int
	maxMessagesPerPacket int
	maxMessageSize       int
	maxSmallBlockSize    int
	giveUpBits           int
	messageFactory       message.Factory
	logger               message.Logger
}

// Option configures a Config. See With* constructors below.
type Option func(*Config)

// NewConfig builds a Config from the channel's default parameters, then
// applies options in order. messageFactory has no default and must be
// supplied via WithMessageFactory, or NewChannel will reject the config.
func NewConfig(options ...Option) *Config {
	c := &Config{
		resendRate:           100 * time.Millisecond,
		sendQueueSize:        1024,
		receiveQueueSize:     256,
		sentPacketsSize:      256,
		maxMessagesPerPacket: 32,
		maxMessageSize:       64,
		maxSmallBlockSize:    64,
		giveUpBits:           64,
		logger:               message.DefaultLogger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func WithResendRate(d time.Duration) Option {
	return func(c *Config) { c.resendRate = d }
}

func WithSendQueueSize(n int) Option {
	return func(c *Config) { c.sendQueueSize = n }
}

func WithReceiveQueueSize(n int) Option {
	return func(c *Config) { c.receiveQueueSize = n }
}

func WithSentPacketsSize(n int) Option {
	return func(c *Config) { c.sentPacketsSize = n }
}

func WithMaxMessagesPerPacket(n int) Option {
	return func(c *Config) { c.maxMessagesPerPacket = n }
}

func WithMaxMessageSize(n int) Option {
	return func(c *Config) { c.maxMessageSize = n }
}

func WithMaxSmallBlockSize(n int) Option {
	return func(c *Config) { c.maxSmallBlockSize = n }
}

func WithGiveUpBits(n int) Option {
	return func(c *Config) { c.giveUpBits = n }
}

func WithMessageFactory(f message.Factory) Option {
	return func(c *Config) { c.messageFactory = f }
}

func WithLogger(l message.Logger) Option {
	return func(c *Config) { c.logger = l }
}

func (c *Config) ResendRate() time.Duration       { return c.resendRate }
func (c *Config) SendQueueSize() int              { return c.sendQueueSize }
func (c *Config) ReceiveQueueSize() int           { return c.receiveQueueSize }
func (c *Config) SentPacketsSize() int            { return c.sentPacketsSize }
func (c *Config) MaxMessagesPerPacket() int       { return c.maxMessagesPerPacket }
func (c *Config) MaxMessageSize() int             { return c.maxMessageSize }
func (c *Config) MaxSmallBlockSize() int          { return c.maxSmallBlockSize }
func (c *Config) GiveUpBits() int                 { return c.giveUpBits }
func (c *Config) MessageFactory() message.Factory { return c.messageFactory }
func (c *Config) Logger() message.Logger          { return c.logger }
