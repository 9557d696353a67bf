/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Command admission-sim runs the admission controller against simulated concurrent traffic.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/acronis/go-admission/admission"
	"github.com/acronis/go-admission/config"
	"github.com/acronis/go-admission/diagserver"
	"github.com/acronis/go-admission/log"
	"github.com/acronis/go-admission/service"
	"github.com/acronis/go-admission/simulation"
)

const envVarsPrefix = "ADMSIM"

const metricsNamespace = "admsim"

type appConfig struct {
	Log        *log.Config
	Admission  *admission.Config
	Simulation *simulation.Config
	DiagServer *diagserver.Config
}

func (c *appConfig) SetProviderDefaults(dp config.DataProvider) {
	config.CallSetProviderDefaultsForFields(c, dp)
}

func (c *appConfig) Set(dp config.DataProvider) error {
	return config.CallSetForFields(c, dp)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("admission-sim", pflag.ContinueOnError)
	cfgPath := flags.StringP("config", "c", "", "path to a YAML config file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLogger := log.NewLogger(cfg.Log)
	defer closeLogger()

	metrics := admission.NewPrometheusMetricsWithOpts(admission.PrometheusMetricsOpts{Namespace: metricsNamespace})
	controller, err := admission.NewWithOpts(cfg.Admission, admission.Opts{
		Observer: admission.MultiObserver{admission.NewLoggingObserver(logger), metrics},
	})
	if err != nil {
		return err
	}

	sim, err := simulation.New(cfg.Simulation, controller, logger)
	if err != nil {
		return err
	}

	units := []service.Unit{service.NewWorkerUnitWithOpts(sim.PeriodicWorker(), service.WorkerUnitOpts{
		MetricsRegisterer: &controllerMetrics{metrics, admission.NewStatsCollector(controller, metricsNamespace)},
		Finite:            cfg.Simulation.Rounds > 0,
	})}
	if cfg.DiagServer.Enabled {
		units = append(units, diagserver.New(cfg.DiagServer, logger, diagserver.Opts{Stats: controller}))
	}

	if err = service.New(logger, service.NewCompositeUnit(units...)).Start(); err != nil {
		return err
	}

	total := sim.Total()
	logger.Info("simulation finished",
		log.Int("admitted", total.Admitted), log.Int("denied", total.Denied), log.Int("retries", total.Retries))
	return nil
}

func loadConfig(path string) (*appConfig, error) {
	cfg := &appConfig{
		Log:        log.NewConfig(),
		Admission:  admission.NewConfig(),
		Simulation: simulation.NewConfig(),
		DiagServer: diagserver.NewConfig(),
	}
	loader := config.NewDefaultLoader(envVarsPrefix)
	if path == "" {
		return cfg, loader.LoadFromReader(bytes.NewReader(nil), config.DataTypeYAML, cfg)
	}
	return cfg, loader.LoadFromFile(path, config.DataTypeYAML, cfg)
}

type controllerMetrics struct {
	observer *admission.PrometheusMetrics
	stats    *admission.StatsCollector
}

func (cm *controllerMetrics) MustRegisterMetrics() {
	cm.observer.MustRegister()
	cm.stats.MustRegister()
}

func (cm *controllerMetrics) UnregisterMetrics() {
	cm.observer.Unregister()
	cm.stats.Unregister()
}
