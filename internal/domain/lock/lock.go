// Package lock define la abstracción de locks advisory por dominio y clave
// compuesta. Tres dominios independientes guardan las secciones críticas del
// motor; cada adquisición tiene deadline y la liberación está garantizada en
// todo camino de salida vía la función de release.
package lock

import (
	"context"
	"sort"
	"time"
)

// Domain identifica una clase de lock. Los dominios son mutuamente independientes.
type Domain string

const (
	// DomainShipment guarda la creación de embarques, clave (remitente, producto).
	DomainShipment Domain = "SHIPMENT_TRANSACTION"
	// DomainLotProduction guarda la asignación de secuencia, clave (fabricante, fecha).
	DomainLotProduction Domain = "LOT_PRODUCTION"
	// DomainAllocation guarda asignar-y-mutar fuera de embarques, clave (propietario, producto).
	DomainAllocation Domain = "VIRTUAL_CODE_ALLOCATION"
)

// Key es la clave compuesta de un lock: dominio + tupla de alcance.
type Key struct {
	Domain Domain
	A      string
	B      string
}

// String retorna la representación canónica de la clave, usada también como
// criterio de orden de adquisición.
func (k Key) String() string {
	return string(k.Domain) + ":" + k.A + ":" + k.B
}

// ReleaseFunc libera el lock adquirido. Idempotente: llamadas repetidas no hacen nada.
type ReleaseFunc func()

// Manager es el administrador de locks advisory.
type Manager interface {
	// Acquire adquiere el lock o falla con domain.ErrLockTimeout al vencer el
	// timeout. El caller decide si reintenta; el manager nunca reintenta solo.
	Acquire(ctx context.Context, key Key, timeout time.Duration) (ReleaseFunc, error)
	// AcquireAll adquiere varias claves en orden ascendente (invariante
	// anti-deadlock). Si alguna falla, libera las ya adquiridas.
	AcquireAll(ctx context.Context, keys []Key, timeout time.Duration) (ReleaseFunc, error)
}

// SortKeys ordena las claves ascendentemente por su forma canónica y elimina
// duplicados. Adquirir siempre en este orden previene deadlocks entre
// operaciones que tomen más de una clave.
func SortKeys(keys []Key) []Key {
	sorted := make([]Key, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k.String()] {
			seen[k.String()] = true
			sorted = append(sorted, k)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
	return sorted
}
