// Command marathon-core is a small demo binary: it builds a fixture run
// spec and a fixture offer, runs them through the instance-op factory, and
// prints the resulting InstanceOp. It plays the same role as the teacher's
// cmd/k8sm-executor/main.go did for the executor: a thin flag-parsing
// wrapper around the library that does the real work.
package main

import (
	"fmt"
	"time"

	log "github.com/golang/glog"
	"github.com/spf13/pflag"

	"github.com/mesosphere/marathon-go/pkg/clock"
	"github.com/mesosphere/marathon-go/pkg/config"
	"github.com/mesosphere/marathon-go/pkg/instance"
	"github.com/mesosphere/marathon-go/pkg/ledger"
	"github.com/mesosphere/marathon-go/pkg/launch"
	"github.com/mesosphere/marathon-go/pkg/offerfeed"
	"github.com/mesosphere/marathon-go/pkg/runspec"
	"github.com/mesosphere/marathon-go/pkg/wire"
)

func main() {
	cfg := config.Default()
	cfg.AddFlags(pflag.CommandLine)
	frameworkID := pflag.String("framework_id", "demo-framework", "Framework id to reserve and launch under.")
	pflag.Parse()

	defer log.Flush()

	spec := runspec.RunSpec{
		Kind:    runspec.KindApp,
		ID:      "/demo/sleeper",
		Version: time.Now(),
		CPU:     0.2,
		Mem:     16,
		Containers: []runspec.ContainerSpec{
			{Name: "sleeper", Command: "sleep 600"},
		},
	}

	offer := wire.Offer{
		ID:       "offer-1",
		AgentID:  "agent-1",
		Hostname: "agent1.example.com",
		Resources: []ledger.OfferResource{
			{Name: ledger.KindCPU, Role: ledger.Unreserved, Scalar: 1.0},
			{Name: ledger.KindMem, Role: ledger.Unreserved, Scalar: 1024},
		},
	}

	// Offers arrive through the registry rather than being handed straight
	// to the factory, so that acquire-once semantics and TTL expiry apply
	// here exactly as they would against a live resource-manager feed.
	feed := offerfeed.New(offerfeed.Config{TTL: cfg.OfferTTL})
	feed.Add([]wire.Offer{offer})

	held, ok := feed.Get(offer.ID)
	if !ok {
		log.Exitf("offer %s vanished from the registry before it could be used", offer.ID)
	}
	if !held.Acquire() {
		log.Exitf("offer %s was already acquired", offer.ID)
	}
	defer held.Release()

	acquiredOffer, ok := held.Details()
	if !ok {
		log.Exitf("offer %s expired before it could be used", offer.ID)
	}

	req := launch.Request{
		RunSpec:            spec,
		Offer:              acquiredOffer,
		CurrentInstances:   map[instance.ID]instance.Instance{},
		AdditionalLaunches: 1,
		FrameworkID:        *frameworkID,
		Config:             cfg,
		Clock:              clock.RealClock,
	}

	op, err := launch.BuildInstanceOp(req)
	if err != nil {
		log.Exitf("failed to build instance op: %v", err)
	}
	if op == nil {
		fmt.Println("no operation: offer did not satisfy the run spec's demand")
		feed.Delete(offer.ID)
		return
	}
	fmt.Printf("emitted %s for run spec %s\n", op.Kind, spec.ID)
	feed.Delete(offer.ID)
}
