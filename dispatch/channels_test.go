package dispatch_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-crm-messaging/core"
	"github.com/goliatone/go-crm-messaging/dispatch"
	"github.com/goliatone/go-crm-messaging/wazzup"
)

func TestChannelManager_Channels(t *testing.T) {
	gateway := &fakeGateway{channels: wazzup.ChannelsResult{
		Success: true,
		Channels: []wazzup.ChannelInfo{
			{ChannelID: "ch-1", Transport: "whatsapp", State: "active"},
			{ChannelID: "ch-2", Transport: "whatsapp", State: "qr"},
			{ChannelID: "ch-3", Transport: "telegram", State: "active"},
			{ChannelID: "ch-4", Transport: "whatsapp", State: "somethingNew"},
		},
	}}
	manager, err := dispatch.NewChannelManager(gateway, nil)
	if err != nil {
		t.Fatalf("new channel manager: %v", err)
	}

	channels, err := manager.Channels(context.Background())
	if err != nil {
		t.Fatalf("channels: %v", err)
	}
	if len(channels) != 4 {
		t.Fatalf("expected 4 channels, got %d", len(channels))
	}
	if !channels[0].Active || channels[0].StateDescription != "Channel is active" {
		t.Fatalf("unexpected active channel annotation %+v", channels[0])
	}
	if channels[1].Active || channels[1].StateDescription != "QR code must be scanned" {
		t.Fatalf("unexpected qr channel annotation %+v", channels[1])
	}
	if channels[3].StateDescription != "Unknown state" {
		t.Fatalf("expected unknown state fallback, got %+v", channels[3])
	}
}

func TestChannelManager_ActiveWhatsApp(t *testing.T) {
	gateway := &fakeGateway{channels: wazzup.ChannelsResult{
		Success: true,
		Channels: []wazzup.ChannelInfo{
			{ChannelID: "ch-1", Transport: "whatsapp", State: "active"},
			{ChannelID: "ch-2", Transport: "whatsapp", State: "disabled"},
			{ChannelID: "ch-3", Transport: "telegram", State: "active"},
		},
	}}
	manager, err := dispatch.NewChannelManager(gateway, nil)
	if err != nil {
		t.Fatalf("new channel manager: %v", err)
	}

	active, err := manager.ActiveWhatsApp(context.Background())
	if err != nil {
		t.Fatalf("active whatsapp: %v", err)
	}
	if len(active) != 1 || active[0].ChannelID != "ch-1" {
		t.Fatalf("expected only ch-1, got %+v", active)
	}
}

func TestChannelManager_DefaultChannel(t *testing.T) {
	gateway := &fakeGateway{channels: wazzup.ChannelsResult{
		Success: true,
		Channels: []wazzup.ChannelInfo{
			{ChannelID: "ch-1", Transport: "whatsapp", State: "active"},
			{ChannelID: "ch-2", Transport: "whatsapp", State: "active"},
		},
	}}
	manager, err := dispatch.NewChannelManager(gateway, nil)
	if err != nil {
		t.Fatalf("new channel manager: %v", err)
	}

	channel, err := manager.DefaultChannel(context.Background())
	if err != nil {
		t.Fatalf("default channel: %v", err)
	}
	if channel.ChannelID != "ch-1" {
		t.Fatalf("expected first active channel, got %+v", channel)
	}

	gateway.channels = wazzup.ChannelsResult{Success: true}
	if _, err := manager.DefaultChannel(context.Background()); !core.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestChannelManager_GatewayFailure(t *testing.T) {
	gateway := &fakeGateway{channels: wazzup.ChannelsResult{
		Success:   false,
		Error:     "Not authorized",
		ErrorCode: "UNAUTHORIZED",
	}}
	manager, err := dispatch.NewChannelManager(gateway, nil)
	if err != nil {
		t.Fatalf("new channel manager: %v", err)
	}
	if _, err := manager.Channels(context.Background()); err == nil {
		t.Fatalf("expected error from failed listing")
	}
}
