package stego

import (
	"fmt"
	"strings"
)

// Channel selects which colour channel of an RGB grid carries the payload.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// AllChannels returns the three channels in storage order.
func AllChannels() []Channel {
	return []Channel{Red, Green, Blue}
}

// ParseChannel accepts "red", "green", "blue" or their first letter, in any case.
func ParseChannel(name string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "red", "r":
		return Red, nil
	case "green", "g":
		return Green, nil
	case "blue", "b":
		return Blue, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChannel, name)
}

// Valid reports whether c is one of Red, Green or Blue.
func (c Channel) Valid() bool {
	return c >= Red && c <= Blue
}

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

func checkChannel(c Channel) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, int(c))
	}
	return nil
}
