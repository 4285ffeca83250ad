package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"peopleapi/internal/service"
)

// MetricsPath is where the Prometheus exposition is served.
const MetricsPath = "/metrics"

// Routes collects everything RegisterRoutes wires. The export services are
// optional; their routes are only mounted when set.
type Routes struct {
	DB       Pinger
	Gatherer prometheus.Gatherer

	Customers service.CustomerService
	People    service.PeopleService

	CustomerExport service.ExportService
	PeopleExport   service.ExportService

	Log zerolog.Logger
}

// RegisterRoutes attaches the health, metrics and resource routes to app.
func RegisterRoutes(app *fiber.App, r Routes) {
	app.Get("/health", HealthCheck(r.DB))
	app.Get("/healthz", LivenessProbe())

	if r.Gatherer != nil {
		app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{})))
	}

	customers := NewCustomerResource(r.Customers, r.Log)
	if r.CustomerExport != nil {
		customers.WithExport(r.CustomerExport)
	}
	customers.Register(app)

	people := NewPeopleResource(r.People, r.Log)
	if r.PeopleExport != nil {
		people.WithExport(r.PeopleExport)
	}
	people.Register(app)
}
