package bdd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"chat_relay_service/internal/chat/app"
	"chat_relay_service/internal/chat/domain"
	"chat_relay_service/internal/chat/repository"
	"chat_relay_service/pkg/logger"

	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	logger.SetNewNop()
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeChatRoomScenario,
		Options: &godog.Options{
			Paths:    []string{"./featureFiles"},
			Format:   "pretty",
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// client in-memory outbound, decoded the way a websocket peer would see it
type client struct {
	id     string
	mu     sync.Mutex
	events []domain.Event
}

func (c *client) ID() string { return c.id }

func (c *client) Enqueue(evt domain.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return true
}

// take remove and return the first event named name
func (c *client) take(name domain.EventName) (domain.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.events {
		if e.Name == name {
			c.events = append(c.events[:i], c.events[i+1:]...)
			return e, true
		}
	}
	return domain.Event{}, false
}

func (c *client) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

type chatWorld struct {
	gateway *app.ChatGateway
	clients map[string]*client
}

func (w *chatWorld) client(name string) (*client, error) {
	c, ok := w.clients[name]
	if !ok {
		return nil, fmt.Errorf("no connection %q", name)
	}
	return c, nil
}

func (w *chatWorld) dispatch(name string, event domain.EventName, data interface{}) error {
	if _, err := w.client(name); err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(domain.WSRequest{Event: event, Data: raw})
	if err != nil {
		return err
	}
	w.gateway.Dispatch(context.Background(), name, frame)
	return nil
}

func (w *chatWorld) connectionsAreOpen(a, b, c string) error {
	for _, name := range []string{a, b, c} {
		cl := &client{id: name}
		w.clients[name] = cl
		w.gateway.Connect(cl)
	}
	return nil
}

func (w *chatWorld) joinsRoom(name, room string) error {
	return w.joinsRoomAs(name, room, name)
}

func (w *chatWorld) joinsRoomAs(name, room, username string) error {
	return w.dispatch(name, domain.JoinRoom, domain.JoinRoomRequest{RoomID: room, Username: username})
}

func (w *chatWorld) sends(name, body string) error {
	return w.dispatch(name, domain.SendMessage, domain.SendMessageRequest{Message: body})
}

func (w *chatWorld) disconnects(name string) error {
	if _, err := w.client(name); err != nil {
		return err
	}
	w.gateway.Disconnect(name)
	return nil
}

func (w *chatWorld) shouldReceiveWelcome(name, room string, count int) error {
	c, err := w.client(name)
	if err != nil {
		return err
	}
	evt, ok := c.take(domain.Welcome)
	if !ok {
		return fmt.Errorf("%s got no welcome", name)
	}
	p := evt.Data.(domain.WelcomePayload)
	if p.Message != "Welcome to room: "+room {
		return fmt.Errorf("unexpected welcome %q", p.Message)
	}
	if len(p.PreviousMessages) != count {
		return fmt.Errorf("expected %d previous messages, got %d", count, len(p.PreviousMessages))
	}
	return nil
}

func (w *chatWorld) shouldReceivePresence(name, event, message string) error {
	c, err := w.client(name)
	if err != nil {
		return err
	}
	evt, ok := c.take(domain.EventName(event))
	if !ok {
		return fmt.Errorf("%s got no %s", name, event)
	}
	if p := evt.Data.(domain.PresencePayload); p.Message != message {
		return fmt.Errorf("expected %q, got %q", message, p.Message)
	}
	return nil
}

func (w *chatWorld) shouldNotReceive(name, event string) error {
	c, err := w.client(name)
	if err != nil {
		return err
	}
	if _, ok := c.take(domain.EventName(event)); ok {
		return fmt.Errorf("%s unexpectedly got %s", name, event)
	}
	return nil
}

func (w *chatWorld) shouldReceiveMessage(name, body, sender string) error {
	c, err := w.client(name)
	if err != nil {
		return err
	}
	evt, ok := c.take(domain.ReceiveMessage)
	if !ok {
		return fmt.Errorf("%s got no message", name)
	}
	p := evt.Data.(domain.ReceiveMessagePayload)
	if p.Message != body || p.Sender != sender {
		return fmt.Errorf("expected %q from %s, got %q from %s", body, sender, p.Message, p.Sender)
	}
	return nil
}

func (w *chatWorld) shouldReceiveNothing(name string) error {
	c, err := w.client(name)
	if err != nil {
		return err
	}
	if n := c.pending(); n != 0 {
		return fmt.Errorf("%s has %d unexpected events", name, n)
	}
	return nil
}

func (w *chatWorld) shouldReceiveError(name, code string) error {
	c, err := w.client(name)
	if err != nil {
		return err
	}
	evt, ok := c.take(domain.ChatError)
	if !ok {
		return fmt.Errorf("%s got no error", name)
	}
	if p := evt.Data.(domain.ErrorPayload); !strings.EqualFold(p.Code, code) {
		return fmt.Errorf("expected code %s, got %s", code, p.Code)
	}
	return nil
}

// InitializeChatRoomScenario 註冊 Gherkin 與 Step Definition 的對應
func InitializeChatRoomScenario(s *godog.ScenarioContext) {
	w := &chatWorld{}
	s.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		w.gateway = app.NewChatGateway(repository.NewMemoryMessageRepository(), nil, app.GatewayOptions{})
		w.clients = map[string]*client{}
		return ctx, nil
	})

	s.Step(`^connections "([^"]*)", "([^"]*)" and "([^"]*)" are open$`, w.connectionsAreOpen)
	s.Step(`^"([^"]*)" joins room "([^"]*)"$`, w.joinsRoom)
	s.Step(`^"([^"]*)" joins room "([^"]*)" as "([^"]*)"$`, w.joinsRoomAs)
	s.Step(`^"([^"]*)" sends "([^"]*)"$`, w.sends)
	s.Step(`^"([^"]*)" disconnects$`, w.disconnects)
	s.Step(`^"([^"]*)" should receive a welcome for room "([^"]*)" with (\d+) previous messages$`, w.shouldReceiveWelcome)
	s.Step(`^"([^"]*)" should receive "([^"]*)" saying "([^"]*)"$`, w.shouldReceivePresence)
	s.Step(`^"([^"]*)" should not receive "([^"]*)"$`, w.shouldNotReceive)
	s.Step(`^"([^"]*)" should receive message "([^"]*)" from "([^"]*)"$`, w.shouldReceiveMessage)
	s.Step(`^"([^"]*)" should receive nothing$`, w.shouldReceiveNothing)
	s.Step(`^"([^"]*)" should receive error "([^"]*)"$`, w.shouldReceiveError)
}
