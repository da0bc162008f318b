package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/tiiuae/rclgo/pkg/ros2"

	"github.com/aeroloop/guidanceengine/internal/config"
	"github.com/aeroloop/guidanceengine/internal/diversion"
	"github.com/aeroloop/guidanceengine/internal/flightgoal"
	"github.com/aeroloop/guidanceengine/internal/markers"
	"github.com/aeroloop/guidanceengine/internal/pathviz"
	"github.com/aeroloop/guidanceengine/internal/payload"
	"github.com/aeroloop/guidanceengine/internal/perception"
	"github.com/aeroloop/guidanceengine/internal/sequencer"
	"github.com/aeroloop/guidanceengine/internal/telemetry"
	"github.com/aeroloop/guidanceengine/internal/types"
)

const (
	registryID = "fleet-registry"
	projectID  = "auto-fleet-mgnt"
	region     = "europe-west1"
	algorithm  = "RS256"
)

var (
	deafultFlagSet    = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	deviceID          = deafultFlagSet.String("device_id", "", "The provisioned device id")
	configPath        = deafultFlagSet.String("config", "guidance.yaml", "Path to the guidance configuration file")
	mqttBrokerAddress = deafultFlagSet.String("mqtt_broker", "", "MQTT broker protocol, address and port (empty disables the uplink)")
	privateKeyPath    = deafultFlagSet.String("private_key", "/enclave/rsa_private.pem", "The private key for the MQTT authentication")
)

func main() {
	deafultFlagSet.Parse(os.Args[1:])

	// attach sigint & sigterm listeners
	terminationSignals := make(chan os.Signal, 1)
	signal.Notify(terminationSignals, syscall.SIGINT, syscall.SIGTERM)

	// quitFunc will be called when process is terminated
	ctx, quitFunc := context.WithCancel(context.Background())

	// wait group will make sure all goroutines have time to clean up
	var wg sync.WaitGroup

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	missionPlan, err := cfg.Plan()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Starting guidance engine of drone: '%s' (%d waypoints)", *deviceID, missionPlan.Len())

	// Setup ROS node
	rclArgs, rclErr := ros2.NewRCLArgs("")
	if rclErr != nil {
		log.Fatal(rclErr)
	}

	rclContext, rclErr := ros2.NewContext(&wg, 0, rclArgs)
	if rclErr != nil {
		log.Fatal(rclErr)
	}
	defer rclContext.Close()

	rclNode, rclErr := rclContext.NewNode("guidanceengine", *deviceID)
	if rclErr != nil {
		log.Fatal(rclErr)
	}

	table := markers.NewTable()
	goalClient := flightgoal.NewRosClient(ctx, rclContext, rclNode)
	go goalClient.Run(ctx, &wg)

	missionDone := make(chan struct{})

	receivers := []types.MessageHandler{
		types.NewLogger(),
		telemetry.New(rclNode, *deviceID),
		perception.New(rclNode, *deviceID),
		pathviz.New(rclNode, missionPlan),
		payload.New(rclNode),
		diversion.New(diversion.Config{
			Envelope:          cfg.Envelope,
			LinearVelocity:    cfg.LinearVelocity,
			YawRate:           cfg.YawRate,
			PositionTolerance: cfg.PositionTolerance,
			YawTolerance:      cfg.YawTolerance,
			Dwell:             cfg.Dwell(),
			Confirm:           cfg.Confirm(),
		}, goalClient),
		sequencer.New(sequencer.Config{
			Envelope:          cfg.Envelope,
			LinearVelocity:    cfg.LinearVelocity,
			YawRate:           cfg.YawRate,
			PositionTolerance: cfg.PositionTolerance,
			YawTolerance:      cfg.YawTolerance,
			SurveyAltitude:    cfg.SurveyAltitude,
			LandingMarkerID:   cfg.LandingMarkerID,
			LandingFallback:   cfg.LandingFallback,
			TickInterval:      cfg.TickInterval(),
		}, goalClient, missionPlan, table),
		&missionEnd{done: missionDone},
	}

	if *mqttBrokerAddress != "" {
		mqttClient := newMQTTClient()
		defer mqttClient.Disconnect(1000)
		receivers = append(receivers, telemetry.NewUplink(mqttClient, *deviceID))
	}

	messagebus := make(chan types.Message, 100)
	bus := types.NewMessageBus(messagebus, receivers...)
	go bus.Run(ctx, &wg)

	// wait for termination or mission end
	select {
	case <-terminationSignals:
		log.Printf("Shutting down..")
	case <-missionDone:
		log.Printf("Mission over, shutting down..")
	}

	// cancel any in-flight goal before tearing the node down
	goalClient.Close()
	quitFunc()

	// wait until goroutines have done their cleanup
	log.Printf("Waiting for routines to finish...")
	wg.Wait()
	log.Printf("Signing off - BYE")
}

// missionEnd closes done once the mission reaches a terminal state.
type missionEnd struct {
	done chan struct{}
	once sync.Once
}

func (m *missionEnd) Receive(message types.Message) {
	switch message.Message.(type) {
	case types.MissionComplete, types.MissionCancelled:
		m.once.Do(func() { close(m.done) })
	}
}

func (m *missionEnd) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
}

func newMQTTClient() mqtt.Client {
	serverAddress := *mqttBrokerAddress
	log.Printf("address: %v", serverAddress)

	// generate MQTT client
	clientID := fmt.Sprintf(
		"projects/%s/locations/%s/registries/%s/devices/%s",
		projectID, region, registryID, *deviceID)

	log.Println("Client ID:", clientID)

	// load private key
	keyData, err := ioutil.ReadFile(*privateKeyPath)
	if err != nil {
		panic(err)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(keyData)
	if err != nil {
		panic(err)
	}

	// generate JWT as the MQTT password
	t := time.Now()
	token := jwt.NewWithClaims(jwt.GetSigningMethod(algorithm), &jwt.StandardClaims{
		IssuedAt:  t.Unix(),
		ExpiresAt: t.Add(24 * time.Hour).Unix(),
		Audience:  projectID,
	})
	pass, err := token.SignedString(key)
	if err != nil {
		panic(err)
	}

	// configure MQTT client
	opts := mqtt.NewClientOptions().
		AddBroker(serverAddress).
		SetClientID(clientID).
		SetUsername("unused").
		SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}).
		SetPassword(pass).
		SetProtocolVersion(4) // Use MQTT 3.1.1

	client := mqtt.NewClient(opts)

	for {
		// retry for ever
		log.Printf("Connecting MQTT...")
		tok := client.Connect()
		if err := tok.Error(); err != nil {
			panic(err)
		}
		if !tok.WaitTimeout(time.Second * 5) {
			log.Println("Connection Timeout")
			continue
		}
		if err := tok.Error(); err != nil {
			panic(err)
		}
		log.Printf("..Connected")
		break
	}

	return client
}
