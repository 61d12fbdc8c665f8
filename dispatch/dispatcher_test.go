package dispatch_test

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-crm-messaging/core"
	"github.com/goliatone/go-crm-messaging/dispatch"
	messagingmigrations "github.com/goliatone/go-crm-messaging/migrations"
	sqlstore "github.com/goliatone/go-crm-messaging/store/sql"
	"github.com/goliatone/go-crm-messaging/wazzup"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type testPersistenceConfig struct {
	dsn string
}

func (c testPersistenceConfig) GetDebug() bool                { return false }
func (c testPersistenceConfig) GetDriver() string             { return "sqlite3" }
func (c testPersistenceConfig) GetServer() string             { return c.dsn }
func (c testPersistenceConfig) GetPingTimeout() time.Duration { return time.Second }
func (c testPersistenceConfig) GetOtelIdentifier() string     { return "go-crm-messaging-tests" }

type fakeGateway struct {
	sendResult   wazzup.Result
	sendCalls    []wazzup.SendMessageInput
	editResult   wazzup.Result
	editCalls    []string
	deleteResult wazzup.Result
	deleteCalls  []string
	channels     wazzup.ChannelsResult
}

func (g *fakeGateway) SendMessage(_ context.Context, in wazzup.SendMessageInput) wazzup.Result {
	g.sendCalls = append(g.sendCalls, in)
	return g.sendResult
}

func (g *fakeGateway) EditMessage(_ context.Context, messageID string, _ wazzup.EditMessageInput) wazzup.Result {
	g.editCalls = append(g.editCalls, messageID)
	return g.editResult
}

func (g *fakeGateway) DeleteMessage(_ context.Context, messageID string) wazzup.Result {
	g.deleteCalls = append(g.deleteCalls, messageID)
	return g.deleteResult
}

func (g *fakeGateway) ListChannels(_ context.Context) wazzup.ChannelsResult {
	return g.channels
}

func newTestFactory(t *testing.T) (*sqlstore.RepositoryFactory, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:dispatch-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	client, err := persistence.New(testPersistenceConfig{dsn: dsn}, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = messagingmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != messagingmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, messagingmigrations.WithValidationTargets(messagingmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		_ = client.Close()
		t.Fatalf("new repository factory: %v", err)
	}
	return factory, func() { _ = client.Close() }
}

func seedClient(t *testing.T, factory *sqlstore.RepositoryFactory, phone string) core.Client {
	t.Helper()
	client, err := factory.Clients().Create(context.Background(), core.CreateClientInput{
		Name:  "Jane",
		Phone: phone,
	})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return client
}

func TestSend_Success(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	ctx := context.Background()

	client := seedClient(t, factory, "+77005551001")
	lead, err := factory.Leads().Create(ctx, core.CreateLeadInput{ClientID: client.ID})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	gateway := &fakeGateway{sendResult: wazzup.Result{
		Success: true,
		Data:    map[string]any{"messageId": "wz-out-1"},
	}}
	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{Stores: factory, Gateway: gateway})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	result, err := dispatcher.Send(ctx, dispatch.SendInput{
		ClientID: client.ID,
		Body:     "Your tour is confirmed",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected successful send, got %+v", result)
	}
	if result.Communication.Status != core.MessageStatusSent {
		t.Fatalf("expected sent status, got %q", result.Communication.Status)
	}
	if result.Communication.ExternalMessageID != "wz-out-1" {
		t.Fatalf("expected external id wz-out-1, got %q", result.Communication.ExternalMessageID)
	}
	if result.Communication.SentAt == nil {
		t.Fatalf("expected sent timestamp")
	}
	if result.Communication.LeadID == nil || *result.Communication.LeadID != lead.ID {
		t.Fatalf("expected send linked to active lead")
	}

	if len(gateway.sendCalls) != 1 {
		t.Fatalf("expected 1 gateway call, got %d", len(gateway.sendCalls))
	}
	call := gateway.sendCalls[0]
	if call.ChatID != "77005551001" {
		t.Fatalf("expected chat id without plus, got %q", call.ChatID)
	}
	if call.Text != "Your tour is confirmed" {
		t.Fatalf("unexpected text %q", call.Text)
	}
	prefix := "crm_" + result.Communication.ID + "_"
	if !strings.HasPrefix(call.CRMMessageID, prefix) {
		t.Fatalf("expected idempotency token prefixed %q, got %q", prefix, call.CRMMessageID)
	}
}

func TestSend_GatewayFailureKeepsRecord(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	ctx := context.Background()

	client := seedClient(t, factory, "+77005551002")
	gateway := &fakeGateway{sendResult: wazzup.Result{
		Success:   false,
		Error:     "Channel not paid",
		ErrorCode: "CHANNEL_NOT_PAID",
	}}
	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{Stores: factory, Gateway: gateway})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	result, err := dispatcher.Send(ctx, dispatch.SendInput{ClientID: client.ID, Body: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Success {
		t.Fatalf("expected failed send")
	}
	if result.Error != "Channel not paid" || result.ErrorCode != "CHANNEL_NOT_PAID" {
		t.Fatalf("unexpected failure details %+v", result)
	}

	stored, err := factory.Communications().Get(ctx, result.Communication.ID)
	if err != nil {
		t.Fatalf("get communication: %v", err)
	}
	if stored.Status != core.MessageStatusError {
		t.Fatalf("expected error status, got %q", stored.Status)
	}
	if stored.ErrorMessage != "Channel not paid" {
		t.Fatalf("expected stored error message, got %q", stored.ErrorMessage)
	}
}

func TestSend_TemplateRendering(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	ctx := context.Background()

	client := seedClient(t, factory, "+77005551003")
	gateway := &fakeGateway{sendResult: wazzup.Result{
		Success: true,
		Data:    map[string]any{"messageId": "wz-out-2"},
	}}
	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{Stores: factory, Gateway: gateway})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	result, err := dispatcher.Send(ctx, dispatch.SendInput{
		ClientID: client.ID,
		Template: &dispatch.Template{Content: "Hi {{name}}, {{tour_name}} costs {{tour_price}}"},
		Context: dispatch.TemplateContext{
			Tour: &dispatch.TourInfo{Name: "Altai Loop", Price: "1500.0"},
		},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	expected := "Hi Jane, Altai Loop costs 1500.0"
	if result.Communication.Body != expected {
		t.Fatalf("expected rendered body %q, got %q", expected, result.Communication.Body)
	}
	if gateway.sendCalls[0].Text != expected {
		t.Fatalf("expected rendered gateway text %q, got %q", expected, gateway.sendCalls[0].Text)
	}
}

func TestSend_MediaOnly(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	ctx := context.Background()

	client := seedClient(t, factory, "+77005551004")
	gateway := &fakeGateway{sendResult: wazzup.Result{
		Success: true,
		Data:    map[string]any{"messageId": "wz-out-3"},
	}}
	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{Stores: factory, Gateway: gateway})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	result, err := dispatcher.Send(ctx, dispatch.SendInput{
		ClientID:   client.ID,
		Body:       "ignored alongside media",
		ContentURI: "https://cdn.example.com/brochure.pdf",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Communication.Body != dispatch.MediaPlaceholderBody {
		t.Fatalf("expected media placeholder, got %q", result.Communication.Body)
	}
	call := gateway.sendCalls[0]
	if call.Text != "" || call.ContentURI != "https://cdn.example.com/brochure.pdf" {
		t.Fatalf("expected media-only gateway call, got %+v", call)
	}
}

func TestSend_RepeatedTokenLeavesNoSentRecord(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	ctx := context.Background()

	client := seedClient(t, factory, "+77005551006")
	gateway := &fakeGateway{sendResult: wazzup.Result{
		Success:   false,
		Error:     "Message with same crmMessageId already sent",
		ErrorCode: "REPEATED_CRM_MESSAGE_ID",
	}}
	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{Stores: factory, Gateway: gateway})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	result, err := dispatcher.Send(ctx, dispatch.SendInput{ClientID: client.ID, Body: "retry me"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Success || result.ErrorCode != "REPEATED_CRM_MESSAGE_ID" {
		t.Fatalf("expected repeated-token failure, got %+v", result)
	}

	messages, err := factory.History().Conversation(ctx, client.ID, true)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	for _, message := range messages {
		if message.Status == core.MessageStatusSent {
			t.Fatalf("expected no sent record, got %+v", message)
		}
	}
	if len(messages) != 1 || messages[0].Status != core.MessageStatusError {
		t.Fatalf("expected single error record, got %+v", messages)
	}
}

func TestSend_RejectsEmptyMessage(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()

	client := seedClient(t, factory, "+77005551005")
	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{Stores: factory, Gateway: &fakeGateway{}})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	if _, err := dispatcher.Send(context.Background(), dispatch.SendInput{ClientID: client.ID}); err == nil {
		t.Fatalf("expected error for empty message")
	}
}

func TestEditSent(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	ctx := context.Background()

	client := seedClient(t, factory, "+77005551006")
	sent, err := factory.Communications().Create(ctx, core.CreateCommunicationInput{
		ClientID:          client.ID,
		Direction:         core.DirectionOutbound,
		Body:              "typo in here",
		ExternalMessageID: "wz-out-4",
		Status:            core.MessageStatusSent,
	})
	if err != nil {
		t.Fatalf("create communication: %v", err)
	}
	pending, err := factory.Communications().Create(ctx, core.CreateCommunicationInput{
		ClientID:  client.ID,
		Direction: core.DirectionOutbound,
		Body:      "never sent",
		Status:    core.MessageStatusPending,
	})
	if err != nil {
		t.Fatalf("create pending communication: %v", err)
	}

	gateway := &fakeGateway{editResult: wazzup.Result{Success: true}}
	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{Stores: factory, Gateway: gateway})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	result, err := dispatcher.EditSent(ctx, sent.ID, dispatch.EditInput{
		Text:      "typo fixed",
		CRMUserID: "agent-7",
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !result.Success || result.Communication.Body != "typo fixed" {
		t.Fatalf("expected edited body, got %+v", result)
	}
	if len(gateway.editCalls) != 1 || gateway.editCalls[0] != "wz-out-4" {
		t.Fatalf("expected edit against wz-out-4, got %v", gateway.editCalls)
	}

	// Records without an external id never reached the provider.
	result, err = dispatcher.EditSent(ctx, pending.ID, dispatch.EditInput{Text: "anything"})
	if err != nil {
		t.Fatalf("edit pending: %v", err)
	}
	if result.Success || result.Error == "" {
		t.Fatalf("expected guarded failure for pending record, got %+v", result)
	}
	if len(gateway.editCalls) != 1 {
		t.Fatalf("expected no gateway call for pending record")
	}
}

func TestDeleteSent(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	ctx := context.Background()

	client := seedClient(t, factory, "+77005551007")
	sent, err := factory.Communications().Create(ctx, core.CreateCommunicationInput{
		ClientID:          client.ID,
		Direction:         core.DirectionOutbound,
		Body:              "sent by mistake",
		ExternalMessageID: "wz-out-5",
		Status:            core.MessageStatusSent,
	})
	if err != nil {
		t.Fatalf("create communication: %v", err)
	}

	gateway := &fakeGateway{deleteResult: wazzup.Result{Success: true}}
	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{Stores: factory, Gateway: gateway})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	result, err := dispatcher.DeleteSent(ctx, sent.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected successful delete, got %+v", result)
	}
	if !result.Communication.Deleted() {
		t.Fatalf("expected tombstoned record")
	}
	if result.Communication.Body != dispatch.DeletedBody {
		t.Fatalf("expected deleted body, got %q", result.Communication.Body)
	}
	if len(gateway.deleteCalls) != 1 || gateway.deleteCalls[0] != "wz-out-5" {
		t.Fatalf("expected delete against wz-out-5, got %v", gateway.deleteCalls)
	}
}
