package mqtt

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/sprintplan/core/events"
	"github.com/kilianp07/sprintplan/internal/eventbus"
)

// TestIntegration publishes a plan event through a real Mosquitto broker.
func TestIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:1.6",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	if tok := sub.Connect(); tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscriber connect: %v", tok.Error())
	}
	defer sub.Disconnect(100)
	got := make(chan string, 1)
	if tok := sub.Subscribe("it/plans/#", 1, func(_ paho.Client, m paho.Message) {
		got <- m.Topic()
	}); tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}

	var cli *PahoClient
	for i := 0; i < 5; i++ {
		cli, err = NewPahoClient(Config{Broker: broker, ClientID: "planner", TopicPrefix: "it"})
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer cli.Disconnect()

	bus := eventbus.New()
	defer bus.Close()
	pctx, cancel := context.WithCancel(ctx)
	defer cancel()
	StartPlanPublisher(pctx, bus, cli, PublisherConfig{Topics: cli.Topics(), QoS: map[string]byte{"plan": 1}})
	bus.Publish(events.PlanEvent{PlanID: "p42", Sprints: 3})

	select {
	case topic := <-got:
		if topic != "it/plans/p42" {
			t.Fatalf("unexpected topic %s", topic)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}
