package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ventifai/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	estadoCajaPrefix = "caja:estado:"
	estadoCajaTTL    = 12 * time.Hour
)

// estadoCajaRedis is the Redis-backed EstadoCajaCache. A cache miss returns
// (nil, nil) so the service falls through to the repository.
type estadoCajaRedis struct {
	rdb *redis.Client
}

func NewEstadoCajaRedis(rdb *redis.Client) EstadoCajaCache {
	return &estadoCajaRedis{rdb: rdb}
}

func (c *estadoCajaRedis) Guardar(ctx context.Context, negocioID uuid.UUID, estado *dto.EstadoCajaResponse) error {
	data, err := json.Marshal(estado)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, estadoCajaPrefix+negocioID.String(), data, estadoCajaTTL).Err()
}

func (c *estadoCajaRedis) Recuperar(ctx context.Context, negocioID uuid.UUID) (*dto.EstadoCajaResponse, error) {
	data, err := c.rdb.Get(ctx, estadoCajaPrefix+negocioID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var estado dto.EstadoCajaResponse
	if err := json.Unmarshal(data, &estado); err != nil {
		return nil, err
	}
	return &estado, nil
}

func logEstadoCacheError(negocioID uuid.UUID, err error) {
	log.Warn().Err(err).Str("negocio_id", negocioID.String()).Msg("caja: no se pudo refrescar el estado en cache")
}
