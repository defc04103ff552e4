package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownChannel is returned when a filename prefix does not match any
// configured camera channel.
var ErrUnknownChannel = errors.New("unknown camera channel")

// Channel maps a filename prefix to a remote sub-path.
type Channel struct {
	// Prefix is the leading PrefixLen characters identifying the camera.
	Prefix string

	// SubPath is the remote sub-path recordings from this camera go to.
	SubPath string

	// Retain marks channels whose remote copies are never expired.
	Retain bool
}

// ChannelMap resolves recording filenames to channels by prefix.
type ChannelMap struct {
	channels []Channel
	byPrefix map[string]Channel
}

// NewChannelMap builds a ChannelMap from the configured channels.
func NewChannelMap(channels []Channel) (*ChannelMap, error) {
	if len(channels) == 0 {
		return nil, errors.New("at least one channel is required")
	}

	byPrefix := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		if len(ch.Prefix) != PrefixLen {
			return nil, fmt.Errorf("channel prefix %q must be %d characters", ch.Prefix, PrefixLen)
		}
		if ch.SubPath == "" {
			return nil, fmt.Errorf("channel %s has no sub-path", ch.Prefix)
		}
		if _, exists := byPrefix[ch.Prefix]; exists {
			return nil, fmt.Errorf("duplicate channel prefix %q", ch.Prefix)
		}
		byPrefix[ch.Prefix] = ch
	}

	return &ChannelMap{
		channels: channels,
		byPrefix: byPrefix,
	}, nil
}

// Resolve returns the channel for a recording filename.
// Returns ErrUnknownChannel if the prefix is not configured.
func (m *ChannelMap) Resolve(name string) (Channel, error) {
	if len(name) < PrefixLen {
		return Channel{}, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
	}
	ch, ok := m.byPrefix[name[:PrefixLen]]
	if !ok {
		return Channel{}, fmt.Errorf("%w: %q", ErrUnknownChannel, name[:PrefixLen])
	}
	return ch, nil
}

// Channels returns the configured channels in declaration order.
func (m *ChannelMap) Channels() []Channel {
	return m.channels
}
