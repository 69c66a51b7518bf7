// Package config defines the core's recognized configuration options
// (spec §6) and wires them to command-line flags the way the teacher's
// cmd/k8sm-executor wires its KubeletExecutorServer flags.
package config

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/mesosphere/marathon-go/pkg/ledger"
)

// Config carries every option the core recognizes.
type Config struct {
	MesosRole                    string
	MesosAuthenticationPrincipal string
	DefaultAcceptedResourceRoles []ledger.Role
	EnvVarsPrefix                string
	TaskReservationTimeout       time.Duration

	// OfferTTL bounds how long an offer stays acquirable in pkg/offerfeed's
	// registry before it is treated as expired, mirroring the resource
	// manager's own offer-rescind timeout.
	OfferTTL time.Duration

	// RecordPodHostPorts resolves the source's "should pod task records
	// carry host ports?" TODO (spec §9); default false, matching §4.1's
	// description of the Pod branch.
	RecordPodHostPorts bool
}

// Default returns the core's default configuration.
func Default() Config {
	return Config{
		DefaultAcceptedResourceRoles: []ledger.Role{ledger.Unreserved},
		TaskReservationTimeout:       24 * time.Hour,
		OfferTTL:                     5 * time.Minute,
		RecordPodHostPorts:           false,
	}
}

// AddFlags registers the config's fields onto fs, in the style of the
// teacher's KubeletExecutorServer.AddFlags.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.MesosRole, "mesos_role", c.MesosRole, "Mesos role under which this framework reserves resources.")
	fs.StringVar(&c.MesosAuthenticationPrincipal, "mesos_authentication_principal", c.MesosAuthenticationPrincipal, "Principal used to authenticate reservations.")
	fs.StringVar(&c.EnvVarsPrefix, "env_vars_prefix", c.EnvVarsPrefix, "Prefix prepended to environment variable names the builder emits.")
	fs.DurationVar(&c.TaskReservationTimeout, "task_reservation_timeout", c.TaskReservationTimeout, "Duration before a New/Suspended reservation is garbage collected.")
	fs.DurationVar(&c.OfferTTL, "offer_ttl", c.OfferTTL, "Duration an offer stays acquirable in the offer registry before it expires.")
	fs.BoolVar(&c.RecordPodHostPorts, "record_pod_host_ports", c.RecordPodHostPorts, "Record host ports on per-task Pod instance records, in addition to the launch request.")
}

// AcceptedRoles returns roles, the run spec's declared accepted roles,
// falling back to c.DefaultAcceptedResourceRoles when empty.
func (c Config) AcceptedRoles(roles []ledger.Role) []ledger.Role {
	if len(roles) > 0 {
		return roles
	}
	return c.DefaultAcceptedResourceRoles
}
