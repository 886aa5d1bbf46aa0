package netlamp_test

import (
	"testing"
	"time"

	"github.com/EmonFan/bardolph/internal/lampset"
	"github.com/EmonFan/bardolph/internal/netlamp"
)

func TestClientDiscoversAndRoundTripsColor(t *testing.T) {
	dev, err := netlamp.NewDevice(":0")
	if err != nil {
		t.Fatalf("NewDevice: %s", err)
	}
	defer dev.Close()
	dev.AddLamp("kitchen", "downstairs", "house", false, 0)

	go dev.Serve()

	client, err := netlamp.Dial(dev.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %s", err)
	}
	defer client.Close()

	if !client.Discover() {
		t.Fatal("Discover() = false, want at least one lamp found")
	}

	lamp, ok := client.GetLight("kitchen")
	if !ok {
		t.Fatal("GetLight(\"kitchen\") not found after Discover")
	}

	want := lampset.Color{H: 100, S: 200, B: 300, K: 2700}
	lamp.SetColor(want, 0)
	time.Sleep(50 * time.Millisecond) // fire-and-forget write, let the server apply it

	got := lamp.GetColor()
	if got != want {
		t.Errorf("GetColor() = %+v, want %+v", got, want)
	}
}

func TestClientAllLampsAfterDiscover(t *testing.T) {
	dev, err := netlamp.NewDevice(":0")
	if err != nil {
		t.Fatalf("NewDevice: %s", err)
	}
	defer dev.Close()
	dev.AddLamp("a", "", "", false, 0)
	dev.AddLamp("b", "", "", false, 0)

	go dev.Serve()

	client, err := netlamp.Dial(dev.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %s", err)
	}
	defer client.Close()

	client.Discover()
	if got := len(client.AllLamps()); got != 2 {
		t.Errorf("AllLamps() has %d entries, want 2", got)
	}
}
