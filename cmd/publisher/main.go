package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type locationMessage struct {
	AnimalID  string  `json:"animal_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
	Source    string  `json:"source"`
}

// Paddock center used by the simulated herd.
const (
	paddockLat = 17.9869
	paddockLon = -92.9303
)

type collar struct {
	id  string
	lat float64
	lon float64
}

func newHerd(n int) []collar {
	herd := make([]collar, n)
	for i := range herd {
		herd[i] = collar{
			id: fmt.Sprintf("BOV-%03d", i+1),
			// start scattered within ~200m of the paddock center
			lat: paddockLat + (rand.Float64()-0.5)*0.0036,
			lon: paddockLon + (rand.Float64()-0.5)*0.0036,
		}
	}
	return herd
}

// step moves a collar a few meters in a random direction, which is about
// what a grazing animal does between fixes.
func (c *collar) step() {
	c.lat += (rand.Float64() - 0.5) * 0.0001
	c.lon += (rand.Float64() - 0.5) * 0.0001
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("herdtrack-mock-publisher")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	herd := newHerd(5)

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		c := &herd[rand.Intn(len(herd))]
		c.step()

		// occasionally an animal bolts well outside the paddock
		if rand.Float64() < 0.05 {
			c.lat += (rand.Float64() - 0.5) * 0.01
			c.lon += (rand.Float64() - 0.5) * 0.01
		}

		msg := locationMessage{
			AnimalID:  c.id,
			Latitude:  c.lat,
			Longitude: c.lon,
			Timestamp: time.Now().Unix(),
			Source:    "GPS",
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/herd/animal/%s/location", c.id)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}
