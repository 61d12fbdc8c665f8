package dispatch

import (
	"context"
	"fmt"

	"github.com/goliatone/go-crm-messaging/core"
	"github.com/goliatone/go-crm-messaging/wazzup"
	goerrors "github.com/goliatone/go-errors"
)

// channelStateDescriptions maps provider channel states to operator-readable
// descriptions.
var channelStateDescriptions = map[string]string{
	"active":           "Channel is active",
	"init":             "Channel is starting",
	"disabled":         "Channel is turned off",
	"phoneUnavailable": "No connection to phone",
	"qr":               "QR code must be scanned",
	"openElsewhere":    "Channel is authorized in another account",
	"notEnoughMoney":   "Channel is not paid",
	"foreignphone":     "Channel QR was scanned by another phone number",
	"unauthorized":     "Not authorized",
	"waitForPassword":  "Waiting for password for two-factor authentication",
	"onModeration":     "WABA channel is in moderation",
	"rejected":         "WABA channel is rejected",
}

// ChannelStateActive is the only state in which a channel can deliver
// messages.
const ChannelStateActive = "active"

// Channel is a provider channel annotated with a readable state description.
type Channel struct {
	ChannelID        string
	Transport        string
	PlainID          string
	State            string
	StateDescription string
	Active           bool
}

// ChannelManager inspects the channels registered on the provider account.
type ChannelManager struct {
	gateway Gateway
	logger  core.Logger
}

func NewChannelManager(gateway Gateway, logger core.Logger) (*ChannelManager, error) {
	if gateway == nil {
		return nil, fmt.Errorf("dispatch: gateway is required")
	}
	return &ChannelManager{gateway: gateway, logger: logger}, nil
}

// Channels lists every channel on the account with its state annotated.
func (m *ChannelManager) Channels(ctx context.Context) ([]Channel, error) {
	if m == nil || m.gateway == nil {
		return nil, fmt.Errorf("dispatch: channel manager is not configured")
	}

	result := m.gateway.ListChannels(ctx)
	if !result.Success {
		if m.logger != nil {
			m.logger.Error("channel listing failed",
				"error", result.Error,
				"error_code", result.ErrorCode,
			)
		}
		return nil, goerrors.New(result.Error, goerrors.CategoryExternal).
			WithTextCode(core.MessagingErrorGatewayFailed)
	}

	channels := make([]Channel, 0, len(result.Channels))
	for _, info := range result.Channels {
		description, ok := channelStateDescriptions[info.State]
		if !ok {
			description = "Unknown state"
		}
		channels = append(channels, Channel{
			ChannelID:        info.ChannelID,
			Transport:        info.Transport,
			PlainID:          info.PlainID,
			State:            info.State,
			StateDescription: description,
			Active:           info.State == ChannelStateActive,
		})
	}
	return channels, nil
}

// ActiveWhatsApp filters the account's channels down to active WhatsApp
// transports, the only ones the dispatcher can send through.
func (m *ChannelManager) ActiveWhatsApp(ctx context.Context) ([]Channel, error) {
	channels, err := m.Channels(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]Channel, 0, len(channels))
	for _, channel := range channels {
		if channel.Transport == wazzup.ChatTypeWhatsApp && channel.Active {
			active = append(active, channel)
		}
	}
	return active, nil
}

// DefaultChannel picks the first active WhatsApp channel on the account.
func (m *ChannelManager) DefaultChannel(ctx context.Context) (Channel, error) {
	channels, err := m.ActiveWhatsApp(ctx)
	if err != nil {
		return Channel{}, err
	}
	if len(channels) == 0 {
		return Channel{}, goerrors.New("no active whatsapp channels found", goerrors.CategoryNotFound).
			WithTextCode(core.MessagingErrorNotFound)
	}
	return channels[0], nil
}
