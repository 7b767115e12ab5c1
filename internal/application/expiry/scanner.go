// Package expiry implementa el escaneo periódico de lotes próximos a vencer.
package expiry

import (
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/rules"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scanner registra alertas por los lotes que vencen dentro de la ventana de
// advertencia. La entrega de notificaciones es responsabilidad de un sistema
// externo; aquí solo se detecta y se loguea estructurado.
type Scanner struct {
	lots  repository.LotRepository
	rules rules.Rules
	log   *logger.Logger
	now   func() time.Time
}

// New construye el escáner. now nil usa time.Now.
func New(lots repository.LotRepository, r rules.Rules, log *logger.Logger, now func() time.Time) *Scanner {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scanner{lots: lots, rules: r, log: log, now: now}
}

// Scan lista los lotes con vencimiento dentro de la ventana y emite una
// advertencia por cada uno. Retorna la cantidad de lotes detectados.
func (s *Scanner) Scan() (int, error) {
	now := s.now()
	cutoff := now.AddDate(0, 0, s.rules.ExpiryWarning)
	lots, err := s.lots.ListExpiringBefore(cutoff)
	if err != nil {
		return 0, err
	}
	for _, lot := range lots {
		days := int(lot.ExpiryDate.Sub(now).Hours() / 24)
		s.log.Warn().
			Str("lot_number", lot.LotNumber).
			Str("manufacturer_id", lot.ManufacturerID).
			Time("expiry_date", lot.ExpiryDate).
			Int("days_left", days).
			Msg("lote próximo a vencer")
	}
	return len(lots), nil
}

// Schedule registra el escaneo en el cron con la expresión configurada.
func (s *Scanner) Schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		if _, err := s.Scan(); err != nil {
			s.log.Error().Err(err).Msg("escaneo de vencimientos")
		}
	})
	return err
}
