/*
This reproduces the presence/light walkthrough end to end: a simulated
presence sensor and light actuator, driven by several concurrent
"sensor" goroutines fanned into one channel, consumed by a single
sequential Process() loop (the fuzzy engine is never safe to call
concurrently, so fan-in is exactly how multiple asynchronous sources
are supposed to feed it). Run it, watch the engine stop committing
training events once it has learned presence drives light, then look
at localhost:8099 for a live debug snapshot.
*/
package main

import (
	"fmt"
	"log"
	"time"

	"embedml/debugview"
	"embedml/fuzzy"
	"embedml/persist"
	"embedml/variable"

	channerics "github.com/niceyeti/channerics/channels"
)

// reading is one simulated tick's sensor values.
type reading struct {
	presence float64
	light    float64
}

// cycle reproduces the walkthrough's training sequence: 10 ticks off,
// 5 ticks on (presence driving light), 5 ticks off again, with one tick
// in that last off phase where the light is left on despite no presence -- the
// "user forgot to turn it off" case the engine must learn to ignore.
func cycle() []reading {
	var out []reading
	for i := 0; i < 10; i++ {
		out = append(out, reading{0, 0})
	}
	for i := 0; i < 5; i++ {
		out = append(out, reading{1, 1})
	}
	for i := 0; i < 5; i++ {
		light := 0.0
		if i == 2 {
			light = 1
		}
		out = append(out, reading{0, light})
	}
	return out
}

// sensorWorker emits three full cycles' readings, a tick apart, then exits.
func sensorWorker(done <-chan struct{}, tick time.Duration) <-chan reading {
	out := make(chan reading)
	go func() {
		defer close(out)
		for n := 0; n < 3; n++ {
			for _, r := range cycle() {
				select {
				case out <- r:
				case <-done:
					return
				}
				time.Sleep(tick)
			}
		}
	}()
	return out
}

func main() {
	engine := fuzzy.NewEngine()
	presence, err := engine.NewInput("presence", 0, 1)
	if err != nil {
		log.Fatal(err)
	}
	light, err := engine.NewOutput("light", 0, 1)
	if err != nil {
		log.Fatal(err)
	}
	engine.SetDebugWriter(logWriter{})
	engine.SetStabilizationHits(0)

	done := make(chan struct{})

	// Three independent "sensor" goroutines run the same walkthrough
	// cycle concurrently; channerics.Merge fans them into one stream so
	// the engine still only ever sees one reading at a time.
	const nworkers = 3
	workers := make([]<-chan reading, nworkers)
	for i := range workers {
		workers[i] = sensorWorker(done, 20*time.Millisecond)
	}
	readings := channerics.Merge(done, workers...)

	var current reading
	var exhausted bool
	engine.SetReadStateCallback(func() (bool, error) {
		r, ok := <-readings
		if !ok {
			exhausted = true
			return false, nil
		}
		current = r
		presence.SetValue(r.presence)
		light.SetValue(r.light)
		return true, nil
	})
	engine.SetOutputStateChangedCallback(func(changed []*variable.Variable) {
		for _, v := range changed {
			fmt.Printf("predicted %s = %.3f (presence=%.0f)\n", v.Name, v.Value, current.presence)
		}
	})

	debugAddr := ":8099"
	go func() {
		srv := debugview.NewServer(debugAddr, engine, 500*time.Millisecond, true)
		log.Println("debug view listening on", debugAddr)
		if err := srv.Serve(); err != nil {
			log.Println("debugview:", err)
		}
	}()

	for !exhausted {
		if err := engine.Process(); err != nil {
			log.Fatal(err)
		}
	}
	close(done)

	presence.SetValue(1)
	if engine.Predict() {
		fmt.Printf("predict(presence=1) -> light=%.3f\n", light.Value)
	}
	presence.SetValue(0)
	if engine.Predict() {
		fmt.Printf("predict(presence=0) -> light=%.3f\n", light.Value)
	}

	const dumpDir = "smldemo_state"
	if err := persist.Save(engine, dumpDir); err != nil {
		log.Println("save:", err)
		return
	}
	fmt.Println("saved trained state to", dumpDir)
}

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	fmt.Print(string(p))
	return len(p), nil
}
