// Package dashboard serves read-only ledger summaries as JSON, covering the
// queries the reporting UI is built on.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tellerd-dev/tellerd/internal/store"
)

const topFailureLimit = 5

// New builds the dashboard API.
func New(st *store.Store, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "tellerd dashboard",
		DisableStartupMessage: true,
	})

	app.Get("/api/summary", func(c *fiber.Ctx) error {
		sum, err := st.LedgerSummary(c.Context())
		if err != nil {
			return serverError(c, log, err)
		}
		return c.JSON(sum)
	})

	app.Get("/api/risk-summary", func(c *fiber.Ctx) error {
		rows, err := st.RiskSummary(c.Context())
		if err != nil {
			return serverError(c, log, err)
		}
		if rows == nil {
			rows = []store.RiskSummaryRow{}
		}
		return c.JSON(rows)
	})

	app.Get("/api/failures/top", func(c *fiber.Ctx) error {
		auth, err := st.TopAuthFailures(c.Context(), topFailureLimit)
		if err != nil {
			return serverError(c, log, err)
		}
		untrusted, err := st.TopUntrustedCustomers(c.Context(), topFailureLimit)
		if err != nil {
			return serverError(c, log, err)
		}
		rows := append(auth, untrusted...)
		if rows == nil {
			rows = []store.FailureRow{}
		}
		return c.JSON(rows)
	})

	return app
}

func serverError(c *fiber.Ctx, log *zap.Logger, err error) error {
	log.Error("dashboard query failed",
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
	})
}
