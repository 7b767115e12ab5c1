// Package codegen genera códigos virtuales únicos para las unidades de un lote.
package codegen

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// maxAttemptsPerCode acota los reintentos por colisión. Superarlo señala
// agotamiento del espacio de códigos y se trata como condición de alerta,
// no se reintenta indefinidamente.
const maxAttemptsPerCode = 5

// Generator produce candidatos de código virtual sin persistirlos; el registro
// de lotes los confirma dentro de su transacción.
type Generator struct {
	codeLength int
}

// New construye el generador con la longitud de código configurada.
func New(codeLength int) *Generator {
	return &Generator{codeLength: codeLength}
}

// Generate produce quantity códigos para el lote, con estado IN_STOCK y
// propietario el fabricante (primera entrada al sistema de trazabilidad).
// Cada código sale del hash MD5 de una semilla única (lote + secuencia + salt),
// tomando los primeros caracteres del digest en mayúscula. Colisiones contra el
// espacio global o dentro del batch reintentan con salt nuevo; al agotar los
// intentos retorna ErrGenerationExhausted.
func (g *Generator) Generate(codes repository.VirtualCodeRepository, lot *entity.Lot, quantity int, now time.Time) ([]entity.VirtualCode, error) {
	batch := make([]entity.VirtualCode, 0, quantity)
	inBatch := make(map[string]bool, quantity)

	for seq := 1; seq <= quantity; seq++ {
		code, err := g.generateOne(codes, lot.ID, seq, inBatch)
		if err != nil {
			return nil, err
		}
		inBatch[code] = true
		batch = append(batch, entity.VirtualCode{
			ID:              uuid.New().String(),
			Code:            code,
			LotID:           lot.ID,
			ProductID:       lot.ProductID,
			Sequence:        seq,
			OwnerID:         lot.ManufacturerID,
			Status:          entity.CodeInStock,
			ManufactureDate: lot.ManufactureDate,
			ExpiryDate:      lot.ExpiryDate,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return batch, nil
}

// generateOne deriva un código único; salt vacío en el primer intento.
func (g *Generator) generateOne(codes repository.VirtualCodeRepository, lotID string, seq int, inBatch map[string]bool) (string, error) {
	salt := ""
	for attempt := 0; attempt < maxAttemptsPerCode; attempt++ {
		seed := fmt.Sprintf("%s:%d:%s", lotID, seq, salt)
		sum := md5.Sum([]byte(seed))
		code := strings.ToUpper(hex.EncodeToString(sum[:]))[:g.codeLength]

		if !inBatch[code] {
			exists, err := codes.ExistsCode(code)
			if err != nil {
				return "", fmt.Errorf("verificar unicidad de código: %w", err)
			}
			if !exists {
				return code, nil
			}
		}
		salt = uuid.New().String()
	}
	return "", domain.ErrGenerationExhausted
}
