package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Patrones de validación del dominio.
var (
	// Código virtual: 12 caracteres alfanuméricos en mayúscula.
	virtualCodeRe = regexp.MustCompile(`^[A-Z0-9]{12}$`)

	// Número de lote: PREFIX-YYYYMMDD-SEQ. El prefijo es configurable por
	// fabricante (2 a 5 letras); la secuencia siempre va a 3 dígitos.
	lotNumberRe = regexp.MustCompile(`^[A-Z]{2,5}-\d{8}-\d{3}$`)

	// Código de producto alfanumérico 6-20 caracteres.
	productCodeRe = regexp.MustCompile(`^[A-Z0-9]{6,20}$`)

	// Teléfono móvil coreano: 010-1234-5678 o 01012345678.
	phoneRe = regexp.MustCompile(`^(01[016789])-?(\d{3,4})-?(\d{4})$`)
)

// ValidVirtualCode valida el formato de un código virtual.
func ValidVirtualCode(code string) bool {
	return virtualCodeRe.MatchString(code)
}

// ValidLotNumber valida el formato de un número de lote.
func ValidLotNumber(lot string) bool {
	return lotNumberRe.MatchString(lot)
}

// ValidProductCode valida el formato de un código de producto.
func ValidProductCode(code string) bool {
	return productCodeRe.MatchString(code)
}

// ValidPhone valida un número de teléfono móvil (formato coreano, con o sin guiones).
func ValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

// NormalizePhone elimina los guiones antes de almacenar o hashear.
func NormalizePhone(phone string) string {
	return strings.ReplaceAll(phone, "-", "")
}

// HashPhone retorna el hash SHA-256 (hex) del teléfono normalizado.
// Los tratamientos referencian al paciente por este hash, nunca por el número en claro.
func HashPhone(phone string) string {
	sum := sha256.Sum256([]byte(NormalizePhone(phone)))
	return hex.EncodeToString(sum[:])
}
